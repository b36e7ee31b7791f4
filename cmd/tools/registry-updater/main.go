// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"collegeplan-workers/pkg/registry"
)

var registryPath = "configs/worker-registry.json"

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Worker ID (e.g., rate-student)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Rate Student)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category (e.g., scoring)")
	taskType := addCmd.String("taskType", "", "Camunda Task Type (e.g., rate-student)")
	version := addCmd.String("version", "1.0.0", "Version")
	implStatus := addCmd.String("status", "planned", "Implementation Status (planned, in-progress, completed, verified)")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Worker ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/worker-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *description == "" || *category == "" || *taskType == "" {
			fmt.Println("Error: id, displayName, description, category, and taskType are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		worker := registry.Worker{
			ID:                   *idAdd,
			DisplayName:          *displayName,
			Description:          *description,
			Category:             *category,
			Version:              *version,
			TaskType:             *taskType,
			ImplementationStatus: *implStatus,
			InputSchema:          map[string]interface{}{},
			OutputSchema:         map[string]interface{}{},
			ErrorCodes:           []string{},
			Timeout:              "30s",
			Retries:              0,
			Workflows:            []string{},
			Tags:                 []string{},
		}
		if err := addWorker(&worker); err != nil {
			fmt.Printf("Error adding worker: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added worker: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateWorker(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating worker: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated worker %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateWorkers(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addWorker(worker *registry.Worker) error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.WorkerRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Workers:     []registry.Worker{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	if err := reg.Add(*worker); err != nil {
		return err
	}
	return reg.Save(registryPath)
}

func updateWorker(id, field, value string) error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	worker := reg.Find(id)
	if worker == nil {
		return fmt.Errorf("worker with ID %s not found", id)
	}

	switch field {
	case "status":
		worker.ImplementationStatus = value
	case "version":
		worker.Version = value
	case "displayName":
		worker.DisplayName = value
	case "description":
		worker.Description = value
	case "category":
		worker.Category = value
	case "taskType":
		worker.TaskType = value
	case "timeout":
		worker.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		worker.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	return reg.Save(registryPath)
}

func validateWorkers() error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if err := reg.Validate(); err != nil {
		return err
	}

	fmt.Printf("Registry validation passed. Found %d workers.\n", len(reg.Workers))
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add     Add a new worker to the registry
  update  Update an existing worker's field
  validate Validate the registry file
  help    Show this help message

Examples:
  registry-updater add -id rate-student -displayName "Rate Student" -description "Scores a student profile on the 0-100 scale" -category scoring -taskType rate-student
  registry-updater update -id rate-student -field status -value completed
  registry-updater validate -path configs/worker-registry.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
