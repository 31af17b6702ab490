package commands

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/greenleafprop/rentledger/models"
)

func InspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <model> <id>",
		Short: "Dump one record by model name and id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prototype, ok := models.ModelTypeRegistry[args[0]]
			if !ok {
				names := make([]string, 0, len(models.ModelTypeRegistry))
				for name := range models.ModelTypeRegistry {
					names = append(names, name)
				}
				sort.Strings(names)
				return fmt.Errorf("unknown model %q, expected one of: %s", args[0], strings.Join(names, ", "))
			}
			id, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}

			db, err := getDB()
			if err != nil {
				return err
			}
			record := reflect.New(reflect.TypeOf(prototype)).Interface()
			if err := db.First(record, uint(id)).Error; err != nil {
				return fmt.Errorf("failed to load %s %d: %v", args[0], id, err)
			}
			_, err = pretty.Println(record)
			return err
		},
	}
}
