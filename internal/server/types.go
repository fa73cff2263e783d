package server

// GCDResponse is the body of a /gcd reply. Numbers are hexadecimal.
type GCDResponse struct {
	A         string `json:"a"`
	B         string `json:"b"`
	Result    string `json:"result,omitempty"`
	Algorithm string `json:"algorithm"`
	Duration  string `json:"duration"`
}

// ScanRequest is the body of a /scan request. Moduli are hexadecimal.
type ScanRequest struct {
	Moduli []string `json:"moduli"`
	Algo   string   `json:"algo,omitempty"`
}

// ScanFinding is one pair of moduli with a common factor.
type ScanFinding struct {
	IndexA    int    `json:"index_a"`
	IndexB    int    `json:"index_b"`
	Factor    string `json:"factor"`
	Duplicate bool   `json:"duplicate"`
}

// ScanResponse is the body of a /scan reply.
type ScanResponse struct {
	Algorithm  string        `json:"algorithm"`
	Moduli     int           `json:"moduli"`
	Units      int           `json:"units"`
	Efficiency float64       `json:"efficiency"`
	Duration   string        `json:"duration"`
	Vulnerable []int         `json:"vulnerable"`
	Findings   []ScanFinding `json:"findings"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// paramError is a request decoding failure with its HTTP status.
type paramError struct {
	Message    string
	StatusCode int
}

func (e paramError) Error() string { return e.Message }
