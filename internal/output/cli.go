package output

import (
	"fmt"
	"io"

	"github.com/lcalzada-xor/codeprobe/internal/model"
)

// PrintResponse writes the status code and raw body of a completed exchange.
func PrintResponse(w io.Writer, resp model.Response) {
	fmt.Fprintf(w, "[Status Code]: %d\n", resp.StatusCode)
	fmt.Fprintln(w, "[Response Body]:")
	fmt.Fprintln(w, resp.Body)
}

// PrintError writes a single line describing a failed exchange.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "[Error]: %v\n", err)
}
