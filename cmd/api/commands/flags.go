package commands

import (
	"github.com/spf13/pflag"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

func overrideString(flags *pflag.FlagSet, name string, dst *string) {
	if flags.Changed(name) {
		*dst, _ = flags.GetString(name)
	}
}

func overrideID(flags *pflag.FlagSet, name string, dst *entities.ID) {
	if flags.Changed(name) {
		v, _ := flags.GetString(name)
		*dst = entities.ID(v)
	}
}
