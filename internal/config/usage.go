package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/agbru/rsagcd/internal/ui"
)

// setCustomUsage installs a themed usage function on fs.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		// Usage can run before the theme is initialized.
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}

		out := fs.Output()
		fmt.Fprintf(out, "\n%srsagcd%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Finds RSA moduli sharing a prime factor by batch GCD.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags] [hexfile ...]\n\n%sFlags:%s\n", t.Warning, t.Reset, fs.Name(), t.Warning, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			sig := "-" + f.Name
			if name != "" {
				sig += " " + name
			}
			fmt.Fprintf(out, "  %s%-22s%s %s", t.Primary, sig, t.Reset, usage)
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" && f.DefValue != "[]" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintf(out, "\nEnvironment variables %s<NAME> override unset flags, e.g. %s%sWORKERS=8%s.\n\n",
			EnvPrefix, t.Primary, EnvPrefix, t.Reset)
	}
}
