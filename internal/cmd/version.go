package cmd

import (
	"fmt"

	"github.com/mcutools/packgen/internal/codegen/common"
)

type Version struct{}

// Run prints the build version to stdout.
func (v *Version) Run() error {
	version, err := common.GetVersion()
	if err != nil {
		return err
	}
	fmt.Println("packgen " + version)
	return nil
}
