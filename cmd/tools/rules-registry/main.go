// cmd/tools/rules-registry/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"assessment-engine/pkg/registry"
)

var rulesPath string

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)
	setCmd := flag.NewFlagSet("set", flag.ExitOnError)
	bumpCmd := flag.NewFlagSet("bump-version", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{exportCmd, validateCmd, showCmd, setCmd, bumpCmd} {
		fs.StringVar(&rulesPath, "path", "configs/rules.json", "Path to rule table file")
	}

	// Set command flags
	class := setCmd.String("class", "", "Class level (10th or 12th)")
	candidate := setCmd.String("candidate", "", "Candidate name (e.g., MBBS)")
	field := setCmd.String("field", "", "Field to update (baseConfidence, costLevel, durationYears, jobDemandTrend, timeToEarn, averageSalary)")
	value := setCmd.String("value", "", "New value for the field")

	// Bump command flags
	version := bumpCmd.String("version", "", "New rule table version (e.g., 2025.07.1)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		rules, err := registry.LoadDefault()
		if err != nil {
			fmt.Printf("Error loading built-in rules: %v\n", err)
			os.Exit(1)
		}
		if err := saveRules(rules, rulesPath); err != nil {
			fmt.Printf("Error exporting rules: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported rule table %s to %s\n", rules.Version, rulesPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		rules, err := registry.Load(rulesPath)
		if err != nil {
			fmt.Printf("Rule table validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Rule table validation passed. Version %s, %d class levels.\n", rules.Version, len(rules.ClassLevels))

	case "show":
		showCmd.Parse(os.Args[2:])
		rules, err := registry.LoadOrDefault(rulesPath)
		if err != nil {
			fmt.Printf("Error loading rules: %v\n", err)
			os.Exit(1)
		}
		show(rules)

	case "set":
		setCmd.Parse(os.Args[2:])
		if *class == "" || *candidate == "" || *field == "" || *value == "" {
			fmt.Println("Error: class, candidate, field, and value are required for set.")
			setCmd.Usage()
			os.Exit(1)
		}
		if err := setField(*class, *candidate, *field, *value); err != nil {
			fmt.Printf("Error updating candidate: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated %s (%s), field %s to %s\n", *candidate, *class, *field, *value)

	case "bump-version":
		bumpCmd.Parse(os.Args[2:])
		if *version == "" {
			fmt.Println("Error: version is required for bump-version.")
			bumpCmd.Usage()
			os.Exit(1)
		}
		if err := bumpVersion(*version); err != nil {
			fmt.Printf("Error bumping version: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Rule table version set to %s\n", *version)

	case "help":
		fallthrough
	default:
		help()
	}
}

func show(rules *registry.RuleSet) {
	fmt.Printf("Version:       %s\n", rules.Version)
	fmt.Printf("Last updated:  %s\n", rules.LastUpdated)
	fmt.Printf("Primary count: %d\n", rules.PrimaryCount)
	fmt.Printf("Weights:       signal=%.2f dominantBonus=%.2f constraintPenalty=%.2f\n",
		rules.Weights.Signal, rules.Weights.DominantBonus, rules.Weights.ConstraintPenalty)

	levels := make([]string, 0, len(rules.ClassLevels))
	for level := range rules.ClassLevels {
		levels = append(levels, level)
	}
	sort.Strings(levels)

	for _, level := range levels {
		cr := rules.ClassLevels[level]
		fmt.Printf("\n%s (%s):\n", level, cr.Kind)
		for _, c := range cr.Candidates {
			fmt.Printf("  %-34s stream=%-12s base=%.2f cost=%-6s years=%d\n",
				c.Name, c.Stream, c.BaseConfidence, c.CostLevel, c.DurationYears)
		}
	}
}

func setField(class, name, field, value string) error {
	rules, err := registry.Load(rulesPath)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	cr, ok := rules.ClassLevels[class]
	if !ok {
		return fmt.Errorf("class level %s not found", class)
	}

	found := false
	for i := range cr.Candidates {
		if cr.Candidates[i].Name != name {
			continue
		}
		found = true
		c := &cr.Candidates[i]
		switch field {
		case "baseConfidence":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid baseConfidence value: %w", err)
			}
			c.BaseConfidence = f
		case "durationYears":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid durationYears value: %w", err)
			}
			c.DurationYears = n
		case "costLevel":
			c.CostLevel = value
		case "jobDemandTrend":
			c.JobDemandTrend = value
		case "timeToEarn":
			c.TimeToEarn = value
		case "averageSalary":
			c.AverageSalary = value
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("candidate %s not found in class level %s", name, class)
	}

	rules.ClassLevels[class] = cr
	rules.LastUpdated = time.Now().Format("2006-01-02")
	if err := rules.Validate(); err != nil {
		return err
	}
	return saveRules(rules, rulesPath)
}

func bumpVersion(version string) error {
	rules, err := registry.Load(rulesPath)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	if version == rules.Version {
		return fmt.Errorf("rule table is already at version %s", version)
	}

	rules.Version = version
	rules.LastUpdated = time.Now().Format("2006-01-02")
	return saveRules(rules, rulesPath)
}

// saveRules handles saving the rule table to file
func saveRules(rules *registry.RuleSet, path string) error {
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: rules-registry <command> [flags]

Commands:
  export        Write the built-in rule table to a file
  validate      Validate a rule table file
  show          Print a summary of a rule table
  set           Update one field of a candidate
  bump-version  Set a new rule table version
  help          Show this help message

Examples:
  rules-registry export -path configs/rules.json
  rules-registry set -path configs/rules.json -class 12th -candidate MBBS -field baseConfidence -value 0.55
  rules-registry bump-version -path configs/rules.json -version 2025.07.1
  rules-registry validate -path configs/rules.json

Use 'rules-registry <command> -h' for more information about a command.
` + "\n")
}
