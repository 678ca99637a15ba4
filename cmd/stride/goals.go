// ABOUTME: Goal management subcommands for the stride CLI
// ABOUTME: Covers listing, creating, inspecting, updating, and deleting goals

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/stridecoach/stride/internal/store"
)

func cmdGoals(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	switch sub {
	case "list":
		return goalsList(ctx, a)
	case "add":
		return goalsAdd(ctx, a, args)
	case "show":
		return goalsShow(ctx, a, args)
	case "update":
		return goalsUpdate(ctx, a, args)
	case "delete":
		return goalsDelete(ctx, a, args)
	default:
		return fmt.Errorf("unknown goals subcommand: %s", sub)
	}
}

func goalsList(ctx context.Context, a *app) error {
	goals, err := a.store.ListGoals(ctx)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		fmt.Println("No goals yet. Create one with `stride goals add --name \"...\"`")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tLEVEL\tMETRICS\tCREATED")
	for _, g := range goals {
		level := g.CurrentLevel
		if g.TargetLevel != "" {
			level = fmt.Sprintf("%s -> %s", g.CurrentLevel, g.TargetLevel)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(g.ID), g.Name, g.Category, level, len(g.Metrics),
			g.CreatedAt.Local().Format("2006-01-02"))
	}
	return w.Flush()
}

func goalsAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("goals add", flag.ContinueOnError)
	name := fs.String("name", "", "goal name (required)")
	description := fs.String("description", "", "longer description")
	category := fs.String("category", "", "category label")
	currentLevel := fs.String("current", "", "current level")
	targetLevel := fs.String("target", "", "target level")
	metrics := fs.String("metrics", "", "comma-separated metrics as name:unit[:target]")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	parsed, err := parseMetrics(*metrics)
	if err != nil {
		return err
	}

	goal, err := a.store.CreateGoal(ctx, store.Goal{
		Name:         *name,
		Description:  *description,
		Category:     *category,
		CurrentLevel: *currentLevel,
		TargetLevel:  *targetLevel,
		Metrics:      parsed,
	})
	if err != nil {
		return err
	}

	color.Green("Created goal %s\n", goal.ID)
	return nil
}

func goalsShow(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: stride goals show <id>")
	}

	goal, err := a.store.GetGoal(ctx, args[0])
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Printf("  %s\n", goal.Name)
	cyan.Println("  " + strings.Repeat("-", len(goal.Name)))
	fmt.Printf("  ID:        %s\n", goal.ID)
	if goal.Description != "" {
		fmt.Printf("  About:     %s\n", goal.Description)
	}
	if goal.Category != "" {
		fmt.Printf("  Category:  %s\n", goal.Category)
	}
	if goal.CurrentLevel != "" || goal.TargetLevel != "" {
		fmt.Printf("  Level:     %s -> %s\n", goal.CurrentLevel, goal.TargetLevel)
	}
	fmt.Printf("  Created:   %s\n", goal.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM"))

	if len(goal.Metrics) > 0 {
		fmt.Println()
		cyan.Println("  Metrics")
		for _, m := range goal.Metrics {
			line := fmt.Sprintf("  - %s (%s)", m.Name, m.Unit)
			if m.CurrentValue != nil {
				line += fmt.Sprintf(": %g", *m.CurrentValue)
			}
			if m.TargetValue != nil {
				line += fmt.Sprintf(" of %g", *m.TargetValue)
			}
			fmt.Println(line)
		}
	}
	fmt.Println()
	return nil
}

func goalsUpdate(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: stride goals update <id> [flags]")
	}
	id := args[0]

	fs := flag.NewFlagSet("goals update", flag.ContinueOnError)
	name := fs.String("name", "", "goal name")
	description := fs.String("description", "", "longer description")
	category := fs.String("category", "", "category label")
	currentLevel := fs.String("current", "", "current level")
	targetLevel := fs.String("target", "", "target level")
	metrics := fs.String("metrics", "", "comma-separated metrics as name:unit[:target]")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	goal, err := a.store.GetGoal(ctx, id)
	if err != nil {
		return err
	}

	// Only flags that were actually passed change the goal
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			goal.Name = *name
		case "description":
			goal.Description = *description
		case "category":
			goal.Category = *category
		case "current":
			goal.CurrentLevel = *currentLevel
		case "target":
			goal.TargetLevel = *targetLevel
		}
	})
	if hasFlag(fs, "metrics") {
		parsed, err := parseMetrics(*metrics)
		if err != nil {
			return err
		}
		goal.Metrics = parsed
	}

	if err := a.store.UpdateGoal(ctx, goal); err != nil {
		return err
	}
	color.Green("Updated goal %s\n", goal.ID)
	return nil
}

func goalsDelete(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: stride goals delete <id>")
	}
	if err := a.store.DeleteGoal(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Goal deleted")
	return nil
}

func hasFlag(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// parseMetrics turns "pace:min/km:5.30,distance:km:10" into metric values.
func parseMetrics(s string) ([]store.Metric, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var out []store.Metric
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			return nil, fmt.Errorf("metric %q must be name:unit[:target]", part)
		}
		m := store.Metric{
			ID:   uuid.New().String(),
			Name: fields[0],
			Unit: fields[1],
		}
		if len(fields) >= 3 {
			var target float64
			if _, err := fmt.Sscanf(fields[2], "%g", &target); err != nil {
				return nil, fmt.Errorf("metric %q has a non-numeric target", part)
			}
			m.TargetValue = &target
		}
		out = append(out, m)
	}
	return out, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
