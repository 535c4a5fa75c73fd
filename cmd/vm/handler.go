package vm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	units "github.com/docker/go-units"
	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	cmdcore "github.com/nivram913/vmmgr/cmd/core"
	"github.com/nivram913/vmmgr/manager"
	"github.com/nivram913/vmmgr/types"
)

type Handler struct {
	cmdcore.BaseHandler
}

// initManager is the shared init for all lifecycle handlers.
func (h Handler) initManager(cmd *cobra.Command) (context.Context, *manager.Manager, error) {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return nil, nil, err
	}
	m, err := cmdcore.InitManager(conf)
	if err != nil {
		return nil, nil, err
	}
	return ctx, m, nil
}

func (h Handler) List(cmd *cobra.Command, args []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	withStatus, _ := cmd.Flags().GetBool("status")
	withConfig, _ := cmd.Flags().GetBool("config")

	records, err := m.List(ctx, name)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No VMs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "NAME\tMAC\tDISK"
	if withStatus {
		header += "\tSTATE"
	}
	_, _ = fmt.Fprintln(w, header)
	for _, rec := range records {
		line := fmt.Sprintf("%s\t%s\t%s", rec.Name, rec.MAC, diskSize(rec.DiskPath))
		if withStatus {
			state := types.StateStopped
			if m.IsRunning(rec.Name) {
				state = types.StateRunning
			}
			line += "\t" + string(state)
		}
		_, _ = fmt.Fprintln(w, line)
	}
	w.Flush() //nolint:errcheck,gosec

	if withConfig {
		for _, rec := range records {
			cfg, err := m.Config(ctx, rec.Name)
			if err != nil {
				return err
			}
			raw, _ := json.Marshal(cfg)
			fmt.Printf("%s: %s\n", rec.Name, raw)
		}
	}
	return nil
}

func (h Handler) Create(cmd *cobra.Command, args []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	disk, _ := cmd.Flags().GetString("disk")
	ram, _ := cmd.Flags().GetString("ram")
	cdrom, _ := cmd.Flags().GetString("cdrom")
	network, _ := cmd.Flags().GetString("network")

	rec, err := m.Create(ctx, args[0], disk, types.CreateOptions{
		RAM:     ram,
		CDROM:   cdrom,
		Network: types.NetworkMode(network),
	})
	if err != nil {
		return err
	}
	log.WithFunc("cmd.create").Infof(ctx, "VM %s created (mac %s, disk %s)", rec.Name, rec.MAC, disk)
	return nil
}

func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	preserveDisk, _ := cmd.Flags().GetBool("preserve-disk")

	if err := m.Delete(ctx, args[0], force, preserveDisk); err != nil {
		return err
	}
	log.WithFunc("cmd.delete").Infof(ctx, "VM %s deleted", args[0])
	return nil
}

func (h Handler) Run(cmd *cobra.Command, args []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	ram, _ := cmd.Flags().GetString("ram")
	boot, _ := cmd.Flags().GetString("boot")

	if err := m.Run(ctx, args[0], types.RunOptions{RAM: ram, Boot: types.BootDevice(boot)}); err != nil {
		return err
	}
	log.WithFunc("cmd.run").Infof(ctx, "VM %s started", args[0])
	return nil
}

func (h Handler) Install(cmd *cobra.Command, args []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	ram, _ := cmd.Flags().GetString("ram")
	cdrom, _ := cmd.Flags().GetString("cd-rom")
	display, _ := cmd.Flags().GetString("display")

	return m.Install(ctx, args[0], ram, cdrom, types.DisplayMode(display))
}

func (h Handler) Stop(cmd *cobra.Command, args []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := m.Stop(ctx, args[0], force); err != nil {
		return err
	}
	log.WithFunc("cmd.stop").Infof(ctx, "VM %s stopped", args[0])
	return nil
}

func (h Handler) Clone(cmd *cobra.Command, args []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	newName, _ := cmd.Flags().GetString("new-name")

	rec, err := m.Clone(ctx, args[0], newName)
	if err != nil {
		return err
	}
	log.WithFunc("cmd.clone").Infof(ctx, "VM %s cloned to %s (mac %s)", args[0], rec.Name, rec.MAC)
	return nil
}

func (h Handler) Modify(cmd *cobra.Command, args []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	ram, _ := cmd.Flags().GetString("ram")
	cdrom, _ := cmd.Flags().GetString("cdrom")
	network, _ := cmd.Flags().GetString("network")

	if err := m.Modify(ctx, args[0], types.ModifyOptions{
		RAM:     ram,
		CDROM:   cdrom,
		Network: types.NetworkMode(network),
	}); err != nil {
		return err
	}
	log.WithFunc("cmd.modify").Infof(ctx, "VM %s configuration updated", args[0])
	return nil
}

func (h Handler) Status(cmd *cobra.Command, args []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	// A single name reports its state even when no record exists.
	if len(args) > 0 {
		state, err := m.State(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", args[0], state)
		return nil
	}

	records, err := m.List(ctx, "")
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, rec := range records {
		state, err := m.State(ctx, rec.Name)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", rec.Name, state)
	}
	w.Flush() //nolint:errcheck,gosec
	return nil
}

func (h Handler) Prune(cmd *cobra.Command, _ []string) error {
	ctx, m, err := h.initManager(cmd)
	if err != nil {
		return err
	}
	removed, err := m.Prune(ctx)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Println("Nothing to prune.")
		return nil
	}
	for _, name := range removed {
		fmt.Printf("Pruned: %s\n", name)
	}
	return nil
}

// diskSize renders the on-disk size of a disk image, "-" when unknown.
func diskSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "-"
	}
	return units.HumanSize(float64(info.Size()))
}
