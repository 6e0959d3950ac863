// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"underwriting-workers/pkg/registry"

	aiu "underwriting-workers/internal/workers/underwriting/ai-underwriting"
	ccs "underwriting-workers/internal/workers/underwriting/calculate-credit-score"
	nd "underwriting-workers/internal/workers/underwriting/notify-decision"
)

// requiredTaskTypes are the task types the worker manager registers.
var requiredTaskTypes = []string{aiu.TaskType, ccs.TaskType, nd.TaskType}

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	exportPath := exportCmd.String("path", "configs/activity-registry.json", "Destination file")
	listPath := listCmd.String("path", "", "Registry file (defaults to the built-in registry)")
	validatePath := validateCmd.String("path", "", "Registry file (defaults to the built-in registry)")

	updatePath := updateCmd.String("path", "configs/activity-registry.json", "Registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, timeout, retries, description)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		reg, err := registry.Default()
		exitOnError("load built-in registry", err)
		exitOnError("save registry", saveRegistry(reg, *exportPath))
		fmt.Printf("Exported %d activities to %s\n", len(reg.Activities), *exportPath)

	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := load(*listPath)
		exitOnError("load registry", err)
		for _, a := range reg.Activities {
			fmt.Printf("%-24s %-10s %-12s timeout=%s retries=%d\n", a.TaskType, a.Version, a.ImplementationStatus, a.Timeout, a.Retries)
		}

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		exitOnError("update activity", updateActivity(*updatePath, *idUpdate, *field, *value))
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := load(*validatePath)
		exitOnError("load registry", err)
		exitOnError("registry validation failed", validateRegistry(reg))
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	default:
		help()
	}
}

func load(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "description":
		activity.Description = value
	case "timeout":
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, path)
}

func validateRegistry(reg *registry.ActivityRegistry) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	for _, taskType := range requiredTaskTypes {
		if _, ok := reg.Find(taskType); !ok {
			return fmt.Errorf("no activity registered for task type %s", taskType)
		}
	}
	return nil
}

func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func exitOnError(what string, err error) {
	if err != nil {
		fmt.Printf("Error: %s: %v\n", what, err)
		os.Exit(1)
	}
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  export    Write the built-in activity registry to a file
  list      List activities
  update    Update an existing activity's field
  validate  Validate a registry file or the built-in registry
  help      Show this help message

Examples:
  registry-updater export -path configs/activity-registry.json
  registry-updater update -id notify-decision -field timeout -value 20s
  registry-updater validate -path configs/activity-registry.json`)
}
