package main

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clearclown/markpdfdown/internal/container"
	"github.com/clearclown/markpdfdown/internal/envfile"
	"github.com/clearclown/markpdfdown/internal/pagecount"
	"github.com/clearclown/markpdfdown/pkg/types"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured worker and discovery tools are usable",
	Long: `Doctor inspects the environment a conversion run would use: the container
runtime, the worker image or executable, the env file, and the page discovery
backend. It prints one line per check and fails if the configured setup
cannot run.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	problems := 0

	switch backend := types.WorkerBackend(viper.GetString("worker.backend")); backend {
	case types.WorkerContainer, "":
		rt, err := container.DetectRuntime()
		if err != nil {
			fmt.Println("missing: container runtime (docker or podman)")
			problems++
			break
		}
		fmt.Printf("ok:      container runtime (%s)\n", rt.Name())

		image := viper.GetString("worker.image")
		if err := rt.ImageExists(image); err != nil {
			fmt.Printf("missing: worker image %s\n", image)
			problems++
		} else {
			fmt.Printf("ok:      worker image %s\n", image)
		}
	case types.WorkerCommand:
		command := viper.GetString("worker.command")
		if command == "" {
			fmt.Println("missing: worker command (set --worker-cmd or MARKPDFDOWN_WORKER_COMMAND)")
			problems++
		} else if _, err := exec.LookPath(command); err != nil {
			fmt.Printf("missing: worker command %s\n", command)
			problems++
		} else {
			fmt.Printf("ok:      worker command %s\n", command)
		}
	default:
		fmt.Printf("invalid: worker backend %q (use container or command)\n", backend)
		problems++
	}

	if envPath := viper.GetString("worker.env_file"); envPath != "" {
		env, err := envfile.Load(envPath)
		if err != nil {
			fmt.Printf("invalid: env file %s (%v)\n", envPath, err)
			problems++
		} else {
			fmt.Printf("ok:      env file %s (%d keys)\n", envPath, len(env))
		}
	}

	if pagecount.NewPdfinfoCounter().Available() {
		fmt.Println("ok:      pdfinfo")
	} else {
		fmt.Println("note:    pdfinfo not found (native page discovery still available)")
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}
	fmt.Println("\nAll checks passed.")
	return nil
}
