// Package inventory produces Ansible dynamic-inventory data for running
// Vagrant machines. Spawning vagrant for every inventory call is slow,
// so results are memoized in a persistent store whose validity is tied
// to the fingerprint of the Vagrant state directory: when that digest
// changes, the whole store is wiped and rebuilt rather than patched.
package inventory

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jamesainslie/dirsig/pkg/dirsig/logging"
	"github.com/jamesainslie/dirsig/pkg/dirsig/manifest"
	"github.com/jamesainslie/dirsig/pkg/dirsig/store"
	"github.com/jamesainslie/dirsig/pkg/vagrant"
)

// ChecksumKey is the reserved store key holding the last-known digest of
// the Vagrant state directory.
const ChecksumKey = "vagrant_checksum"

// boxesKey caches the list of running machine names.
const boxesKey = "boxes"

// configKeyPrefix namespaces per-machine ssh config cache keys.
const configKeyPrefix = "ssh-config/"

var logger = logging.Get("inventory")

// GroupName is the Ansible group all Vagrant machines are reported under.
const GroupName = "vagrant"

// Inventory resolves and caches Vagrant machine data.
type Inventory struct {
	// Vagrant lists machines and fetches their ssh configuration.
	Vagrant *vagrant.Client

	// Builder fingerprints the Vagrant state directory.
	Builder *manifest.Builder

	// Store memoizes lookups across invocations.
	Store *store.Store
}

// New returns an Inventory over the given collaborators.
func New(client *vagrant.Client, builder *manifest.Builder, st *store.Store) *Inventory {
	return &Inventory{Vagrant: client, Builder: builder, Store: st}
}

// StorePath derives the host-unique backing file for inventory caching,
// so unrelated hosts sharing a filesystem do not collide. Nothing
// protects two concurrent invocations on the same host; the last Sync
// wins.
func StorePath() string {
	return filepath.Join(os.TempDir(), "ansible-vagrant-inventory-"+nodeID())
}

// nodeID is the hex hardware node identifier (MAC-derived).
func nodeID() string {
	return hex.EncodeToString(uuid.NodeID())
}

// Refresh compares the current digest of vagrantDir against the stored
// checksum and wipes the store when they differ, then records the
// current digest. A missing vagrantDir fingerprints as the empty digest.
func (inv *Inventory) Refresh(vagrantDir string) error {
	var current string
	if _, err := os.Stat(vagrantDir); err == nil {
		res, err := inv.Builder.Build(vagrantDir)
		if err != nil {
			return fmt.Errorf("fingerprint %s: %w", vagrantDir, err)
		}
		current = res.Digest
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", vagrantDir, err)
	}

	var stored string
	if err := inv.Store.Get(ChecksumKey, &stored); err == nil && stored == current {
		return nil
	}

	logger.Debug("vagrant state changed, purging cache",
		"store", inv.Store.Path(), "digest", current)
	if err := inv.Store.Clear(); err != nil {
		return err
	}
	if err := inv.Store.Set(ChecksumKey, current); err != nil {
		return err
	}
	return inv.Store.Sync()
}

// runningBoxes returns the running machine names, from cache when
// available.
func (inv *Inventory) runningBoxes(ctx context.Context) ([]string, error) {
	var boxes []string
	if err := inv.Store.Get(boxesKey, &boxes); err == nil {
		return boxes, nil
	}

	boxes, err := inv.Vagrant.ListRunning(ctx)
	if err != nil {
		return nil, err
	}
	if boxes == nil {
		boxes = []string{}
	}
	if err := inv.Store.Set(boxesKey, boxes); err != nil {
		return nil, err
	}
	return boxes, inv.Store.Sync()
}

// sshConfig returns one machine's ssh configuration, from cache when
// available.
func (inv *Inventory) sshConfig(ctx context.Context, name string) (map[string]string, error) {
	key := configKeyPrefix + name

	var config map[string]string
	if err := inv.Store.Get(key, &config); err == nil {
		return config, nil
	}

	config, err := inv.Vagrant.SSHConfig(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := inv.Store.Set(key, config); err != nil {
		return nil, err
	}
	return config, inv.Store.Sync()
}

// List returns the Ansible group mapping: every running machine under
// the vagrant group.
func (inv *Inventory) List(ctx context.Context) (map[string][]string, error) {
	boxes, err := inv.runningBoxes(ctx)
	if err != nil {
		return nil, err
	}
	return map[string][]string{GroupName: boxes}, nil
}

// Host returns the hostvars for one machine: its raw ssh configuration
// plus the ansible_ssh_* connection variables Ansible consumes. An
// unknown machine yields an empty map, per the dynamic-inventory
// contract.
func (inv *Inventory) Host(ctx context.Context, name string) (map[string]string, error) {
	boxes, err := inv.runningBoxes(ctx)
	if err != nil {
		return nil, err
	}

	known := false
	for _, box := range boxes {
		if box == name {
			known = true
			break
		}
	}
	if !known {
		return map[string]string{}, nil
	}

	config, err := inv.sshConfig(ctx, name)
	if err != nil {
		return nil, err
	}

	vars := make(map[string]string, len(config)+5)
	for k, v := range config {
		vars[k] = v
	}
	vars["box_name"] = name
	vars["ansible_ssh_host"] = config["HostName"]
	vars["ansible_ssh_port"] = config["Port"]
	vars["ansible_ssh_user"] = config["User"]
	vars["ansible_ssh_private_key_file"] = config["IdentityFile"]
	return vars, nil
}
