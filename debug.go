package depot

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-depot/depot/internal/registry"
)

// StackInfo is a structured view of the scope stack for debugging, base
// scope first.
type StackInfo struct {
	Scopes []ScopeInfo
}

type ScopeInfo = registry.ScopeInfo

type RecordInfo = registry.RecordInfo

// Stack returns the structured stack view.
func (d *Depot) Stack() StackInfo {
	return StackInfo{Scopes: d.stack.Info()}
}

// PrintStack writes the stack dump to stdout.
func (d *Depot) PrintStack() {
	d.FprintStack(os.Stdout)
}

// FprintStack writes the stack dump to w, top scope first so the dump reads
// in resolution order.
func (d *Depot) FprintStack(w io.Writer) {
	info := d.Stack()

	for i := len(info.Scopes) - 1; i >= 0; i-- {
		sc := info.Scopes[i]
		marker := " "
		if i == len(info.Scopes)-1 {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", marker, sc.Name)

		if len(sc.Records) == 0 {
			_, _ = fmt.Fprintln(w, "    (empty)")
			continue
		}
		for _, rec := range sc.Records {
			status := "○"
			if rec.Instantiated {
				status = "●"
			}
			_, _ = fmt.Fprintf(w, "    %s %s [%s]\n", status, rec.Key, rec.Strategy)
		}
	}
}

// SprintStack returns the stack dump as a string.
func (d *Depot) SprintStack() string {
	var sb strings.Builder
	d.FprintStack(&sb)
	return sb.String()
}
