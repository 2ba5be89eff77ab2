package diff

import (
	"context"
	"fmt"
)

// ExampleLibDiffer_DiffLines demonstrates diffing two method dumps in process
func ExampleLibDiffer_DiffLines() {
	d := NewLibDiffer()

	base := "push rbp\nmov eax, 1\nret\n"
	head := "push rbp\nmov eax, 2\nret\n"

	lines, err := d.DiffLines(context.Background(), base, head)
	if err != nil {
		// handle error
		return
	}

	added, deleted, _ := CalcLineChanges(lines)
	fmt.Println(added, deleted)
	// Output: 1 1
}
