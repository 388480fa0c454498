package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/hydrofarm/core/dashboard"
	"github.com/trezcool/hydrofarm/core/learning"
	"github.com/trezcool/hydrofarm/core/todo"
	"github.com/trezcool/hydrofarm/core/view"
)

func formatValue(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%s", *v, unit)
}

func (cli *commandLine) dashboardPage(scope *view.Scope, classID int, onError func(error)) (*dashboard.Page, error) {
	page, err := dashboard.LoadPage(scope, dashboard.PageDeps{
		Service:     cli.dashSvc,
		Guard:       cli.guard,
		Logger:      cli.logger,
		OnTodoError: onError,
	}, classID)
	if ferr := cli.follow(page.Decision); ferr != nil {
		return nil, ferr
	}
	return page, err
}

func (cli *commandLine) dashboard(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("dashboard")
	classID := fs.Int("class", 0, "The class id.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, *classID > 0); err != nil {
		return err
	}

	scope := view.NewScope(ctx)
	defer scope.Unmount()

	page, err := cli.dashboardPage(scope, *classID, nil)
	if err != nil {
		return err
	}

	dash := page.Dashboard
	cli.printf("Class %s\n\n", dash.ClassName)

	cli.println("Beds:")
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	for _, b := range dashboard.DisplayBeds(dash.Beds) {
		crop, days := "-", "-"
		if b.CropName != nil {
			crop = *b.CropName
		}
		if b.DaysElapsed != nil {
			days = fmt.Sprintf("day %d", *b.DaysElapsed)
		}
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\t%s %s\t%s %s\n",
			b.Name, crop, days,
			formatValue(b.Sensors.Temperature.Value, "°C"), dashboard.StatusSymbol(b.Sensors.Temperature.Status),
			formatValue(b.Sensors.Humidity.Value, "%"), dashboard.StatusSymbol(b.Sensors.Humidity.Status),
		)
	}
	_ = tw.Flush()

	cli.println()
	if page.ReadOnly() {
		cli.println("To-dos (read-only):")
	} else {
		cli.println("To-dos:")
	}
	printTodos(cli.out, page.Todos.State())

	cli.println()
	cli.printf("Badges: %d/%d\n", dashboard.AcquiredCount(dash.Badges), len(dash.Badges))
	for _, b := range dash.Badges {
		mark := " "
		if b.Acquired {
			mark = "✓"
		}
		cli.printf("  %s %s (%s)\n", mark, b.Name, dashboard.BadgeTier(b.Name))
	}
	return nil
}

func printTodos(w io.Writer, state todo.State) {
	for _, e := range state.Entries {
		mark := " "
		if e.Todo.IsCompleted {
			mark = "x"
		}
		_, _ = fmt.Fprintf(w, "  [%s] %d. %s\n", mark, e.Todo.ID, e.Todo.Content)
	}
}

func (cli *commandLine) toggleTodo(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("todo")
	classID := fs.Int("class", 0, "The class id.")
	todoID := fs.Int("id", 0, "The to-do id.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, *classID > 0 && *todoID > 0); err != nil {
		return err
	}

	scope := view.NewScope(ctx)
	defer scope.Unmount()

	var syncErr error
	page, err := cli.dashboardPage(scope, *classID, func(err error) { syncErr = err })
	if err != nil {
		return err
	}

	if err := page.Todos.Toggle(*todoID); err != nil {
		if err == todo.ErrReadOnly {
			cli.println("Guests cannot change to-dos.")
		}
		return err
	}
	page.Todos.Wait()

	if ferr := cli.follow(page.Route()); ferr != nil {
		return ferr
	}
	if syncErr != nil {
		cli.println("Could not save the change; the list was reloaded.")
	}
	printTodos(cli.out, page.Todos.State())
	return syncErr
}

func (cli *commandLine) graphs(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("graphs")
	classID := fs.Int("class", 0, "The class id.")
	rng := fs.String("range", string(dashboard.Range24h), "The period: 24h or 7d.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, *classID > 0); err != nil {
		return err
	}

	scope := view.NewScope(ctx)
	defer scope.Unmount()

	page, err := dashboard.LoadGraphPage(scope, dashboard.GraphDeps{
		Service:  cli.dashSvc,
		Guard:    cli.guard,
		Location: cli.loc,
		Now:      cli.now,
	}, *classID, dashboard.Range(*rng))
	if ferr := cli.follow(page.Decision); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	if page.Current != nil {
		cli.printf("Now: %s %s  %s %s\n\n",
			formatValue(page.Current.Temperature.Value, "°C"), dashboard.StatusSymbol(page.Current.Temperature.Status),
			formatValue(page.Current.Humidity.Value, "%"), dashboard.StatusSymbol(page.Current.Humidity.Status),
		)
	}

	layout := "15:04"
	if page.Graph.Range == dashboard.Range7d {
		layout = "01/02 15:04"
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "Time\tTemperature\tHumidity")
	for _, p := range page.Graph.Data {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n",
			p.RecordedAt.Format(layout), formatValue(p.Temperature, "°C"), formatValue(p.Humidity, "%"))
	}
	return tw.Flush()
}

func optionIndex(answer string, n int) (int, bool) {
	answer = strings.TrimSpace(answer)
	for i := 0; i < n; i++ {
		if strings.EqualFold(learning.OptionLabel(i), answer) {
			return i, true
		}
	}
	return 0, false
}

func (cli *commandLine) printResult(snap learning.Snapshot) {
	res := snap.Result
	switch res.Outcome() {
	case learning.Correct:
		cli.printf("Correct! +%d points\n", res.PointsEarned)
	case learning.LimitReached:
		cli.println("Correct! No points this time: today's point chances are used up.")
	default:
		if !res.ShowCorrectAnswer() {
			cli.println("Answer recorded.")
			break
		}
		cli.println("Not quite.")
	}
	if res.ShowCorrectAnswer() {
		i := *res.CorrectAnswerIndex
		if i >= 0 && i < len(snap.Quiz.Options) {
			cli.printf("Answer: %s. %s\n", learning.OptionLabel(i), snap.Quiz.Options[i])
		}
	}
	if res.Explanation != "" {
		cli.println(res.Explanation)
	}
	cli.printf("Point chances left today: %d\n", res.RemainingPointChances)
}

// quiz runs the quiz flow interactively: options are picked by label, one per line.
func (cli *commandLine) quiz(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("quiz")
	classID := fs.Int("class", 0, "The class id.")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlag(fs, *classID > 0); err != nil {
		return err
	}
	if err := cli.follow(cli.guard.Class(*classID)); err != nil {
		return err
	}

	scope := view.NewScope(ctx)
	flow := learning.NewFlow(cli.learnSvc, scope, *classID, cli.logger)
	defer flow.Close()

	for {
		snap, err := flow.Load()
		if err != nil {
			return err
		}
		switch snap.State {
		case learning.Finished:
			cli.println(snap.Message)
			return nil
		case learning.Closed:
			if snap.Alert != "" {
				cli.println(snap.Alert)
			}
			return cli.redirectTo(snap.Redirect)
		}

		q := snap.Quiz
		cli.printf("\n[%s] %s\n", q.Category, q.Question)
		for i, opt := range q.Options {
			cli.printf("  %s. %s\n", learning.OptionLabel(i), opt)
		}
		if snap.Today.IsPointEligible != nil && !*snap.Today.IsPointEligible {
			cli.println("(no points left today, answer for fun!)")
		}

		for answered := false; !answered; {
			cli.printf("Your answer: ")
			line, rerr := cli.in.ReadString('\n')
			if strings.TrimSpace(line) == "" && rerr != nil {
				cli.println()
				return nil // input closed
			}

			if strings.TrimSpace(line) != "" {
				i, ok := optionIndex(line, len(q.Options))
				if !ok {
					cli.printf("Choose one of the listed options.\n")
					continue
				}
				if err := flow.Select(i); err != nil {
					return err
				}
			}

			snap, err = flow.Submit()
			if err != nil {
				return err
			}
			switch {
			case snap.State == learning.Closed:
				return cli.redirectTo(snap.Redirect)
			case snap.Alert != "":
				cli.println(snap.Alert)
			default:
				answered = true
			}
		}

		cli.printResult(snap)
		cli.printf("Next quiz? [y/N] ")
		line, _ := cli.in.ReadString('\n')
		if !yes(line) {
			cli.println()
			return nil
		}
		if err := flow.Next(); err != nil {
			return err
		}
	}
}
