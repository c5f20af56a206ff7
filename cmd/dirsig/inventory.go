package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dirsig/pkg/dirsig/store"
	"github.com/jamesainslie/dirsig/pkg/inventory"
	"github.com/jamesainslie/dirsig/pkg/vagrant"
)

// runInventory implements the Ansible dynamic-inventory protocol on the
// root command. Ansible invokes the script with exactly one of --list
// or --host <name> and consumes the JSON on stdout.
func runInventory(cmd *cobra.Command, _ []string) error {
	list, _ := cmd.Flags().GetBool("list")
	host, _ := cmd.Flags().GetString("host")

	if !list && host == "" {
		return cmd.Help()
	}

	if err := initLogging(); err != nil {
		return err
	}

	builder, cleanup, err := newBuilder()
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := store.Open(inventory.StorePath(), store.Options{
		Mode:   store.ModeCreate,
		Format: store.FormatJSON,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	client := vagrant.NewClient(viper.GetString("vagrant_binary"))
	inv := inventory.New(client, builder, st)

	// The cache lives exactly as long as the Vagrant state directory's
	// fingerprint. VAGRANT_CWD relocates that directory the same way it
	// does for vagrant itself.
	vagrantDir := os.Getenv("VAGRANT_CWD")
	if vagrantDir == "" {
		vagrantDir = viper.GetString("vagrant_dir")
	}
	if err := inv.Refresh(vagrantDir); err != nil {
		return err
	}

	ctx := cmd.Context()

	var out any
	if list {
		out, err = inv.List(ctx)
	} else {
		out, err = inv.Host(ctx, host)
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
