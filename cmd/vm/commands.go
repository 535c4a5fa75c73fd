package vm

import "github.com/spf13/cobra"

// Actions defines the VM lifecycle operations exposed by the CLI.
type Actions interface {
	List(cmd *cobra.Command, args []string) error
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	Run(cmd *cobra.Command, args []string) error
	Install(cmd *cobra.Command, args []string) error
	Stop(cmd *cobra.Command, args []string) error
	Clone(cmd *cobra.Command, args []string) error
	Modify(cmd *cobra.Command, args []string) error
	Status(cmd *cobra.Command, args []string) error
	Prune(cmd *cobra.Command, args []string) error
}

// Commands builds the lifecycle subcommands.
func Commands(h Actions) []*cobra.Command {
	listCmd := &cobra.Command{
		Use:     "list [NAME]",
		Aliases: []string{"ls"},
		Short:   "List all VMs, or one",
		Args:    cobra.MaximumNArgs(1),
		RunE:    h.List,
	}
	listCmd.Flags().BoolP("status", "s", false, "include status")
	listCmd.Flags().BoolP("config", "c", false, "include configuration")

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new VM",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Create,
	}
	createCmd.Flags().String("disk", "", "disk size (M and G suffixes)")
	createCmd.Flags().String("ram", "1G", "memory size (M and G suffixes)")
	createCmd.Flags().String("cdrom", "", "ISO file for the virtual CD-ROM")
	createCmd.Flags().String("network", "NAT", "network type (none|NAT|bridge)")
	_ = createCmd.MarkFlagRequired("disk")

	deleteCmd := &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete an existing VM",
		Args:    cobra.ExactArgs(1),
		RunE:    h.Delete,
	}
	deleteCmd.Flags().BoolP("force", "f", false, "stop the VM first if it is running")
	deleteCmd.Flags().Bool("preserve-disk", false, "keep the disk image in the VM home")

	runCmd := &cobra.Command{
		Use:   "run NAME",
		Short: "Launch a VM",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Run,
	}
	runCmd.Flags().String("ram", "", "memory size override")
	runCmd.Flags().String("boot", "", "boot device (disk|cdrom)")

	installCmd := &cobra.Command{
		Use:   "install NAME",
		Short: "Boot a VM from an installer ISO (blocks until the session ends)",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Install,
	}
	installCmd.Flags().String("ram", "", "memory size override")
	installCmd.Flags().String("cd-rom", "", "installer ISO")
	installCmd.Flags().String("display", "curses", "display mode (curses|none)")
	_ = installCmd.MarkFlagRequired("cd-rom")

	stopCmd := &cobra.Command{
		Use:   "stop NAME",
		Short: "Stop a running VM",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Stop,
	}
	stopCmd.Flags().BoolP("force", "f", false, "escalate to forced termination")

	cloneCmd := &cobra.Command{
		Use:   "clone NAME",
		Short: "Clone a stopped VM",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Clone,
	}
	cloneCmd.Flags().String("new-name", "", "name of the clone")
	_ = cloneCmd.MarkFlagRequired("new-name")

	modifyCmd := &cobra.Command{
		Use:   "modify NAME",
		Short: "Modify an existing VM's configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Modify,
	}
	modifyCmd.Flags().String("ram", "", "memory size")
	modifyCmd.Flags().String("cdrom", "", "ISO file for the virtual CD-ROM")
	modifyCmd.Flags().String("network", "", "network type (none|NAT|bridge)")

	statusCmd := &cobra.Command{
		Use:   "status [NAME]",
		Short: "Show the state of all VMs, or one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  h.Status,
	}

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove orphaned VM directories left by interrupted creates",
		Args:  cobra.NoArgs,
		RunE:  h.Prune,
	}

	return []*cobra.Command{
		listCmd,
		createCmd,
		deleteCmd,
		runCmd,
		installCmd,
		stopCmd,
		cloneCmd,
		modifyCmd,
		statusCmd,
		pruneCmd,
	}
}
