package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Alia5/cscan/internal/version"
)

// Version prints the build version.
type Version struct{}

func (v *Version) Run() error {
	return v.write(os.Stdout)
}

func (v *Version) write(w io.Writer) error {
	ver, err := version.Get()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "cscan %s\n", ver)
	return err
}
