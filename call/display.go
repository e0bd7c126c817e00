package call

import (
	"fmt"
	"strings"
)

// Command renders the composed call as the command line that reproduces it, e.g.
//
//	xc call parachain --pallet Balances --extrinsic transfer --args "5Grw...", "1000" --url ws://localhost:9944/ --suri //Alice
//
// Segments that are not known yet are left out.
type Command struct {
	Tool      string
	Pallet    string
	Extrinsic string
	Storage   string
	Args      []string
	URL       string
	Suri      string
}

func (c *Command) String() string {
	var b strings.Builder
	b.WriteString(c.Tool)
	b.WriteString(" call parachain")
	if c.Pallet != "" {
		fmt.Fprintf(&b, " --pallet %s", c.Pallet)
	}
	if c.Extrinsic != "" {
		fmt.Fprintf(&b, " --extrinsic %s", c.Extrinsic)
	}
	if c.Storage != "" {
		fmt.Fprintf(&b, " --storage %s", c.Storage)
	}
	if len(c.Args) > 0 {
		quoted := make([]string, len(c.Args))
		for i, arg := range c.Args {
			quoted[i] = `"` + arg + `"`
		}
		fmt.Fprintf(&b, " --args %s", strings.Join(quoted, ", "))
	}
	fmt.Fprintf(&b, " --url %s", c.URL)
	if c.Suri != "" {
		fmt.Fprintf(&b, " --suri %s", c.Suri)
	}
	return b.String()
}
