package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/hydrofarm/core/admin"
	"github.com/trezcool/hydrofarm/core/view"
)

func (cli *commandLine) adminPage(scope *view.Scope, tab admin.Tab) (*admin.Page, error) {
	page, err := admin.LoadPage(scope, cli.adminSvc, cli.guard)
	if ferr := cli.follow(page.Decision); ferr != nil {
		return nil, ferr
	}
	if err != nil {
		return nil, err
	}
	if tab != admin.TabClasses {
		if err := page.Activate(tab); err != nil {
			if ferr := cli.follow(page.Decision); ferr != nil {
				return nil, ferr
			}
			return nil, err
		}
	}
	return page, nil
}

func (cli *commandLine) printClasses(classes []admin.Class) {
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tName\tCode\tCreated")
	for _, c := range classes {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Code, c.CreatedAt.In(cli.loc).Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func (cli *commandLine) printBeds(beds []admin.HydroBed) {
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tName\tClass\tDevice\tLocation\tStatus")
	for _, b := range beds {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Name, b.DisplayClassName(), b.DeviceID, b.Location, b.Status)
	}
	_ = tw.Flush()
}

func (cli *commandLine) classes(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	fs := cli.newFlagSet("classes " + sub)
	id := fs.Int("id", 0, "The class id.")
	name := fs.String("name", "", "The class name.")
	if err := parse(fs, args); err != nil {
		return err
	}

	scope := view.NewScope(ctx)
	defer scope.Unmount()
	page, err := cli.adminPage(scope, admin.TabClasses)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
	case "create":
		class, err := page.CreateClass(admin.ClassForm{Name: *name})
		if err != nil {
			return err
		}
		cli.printf("Created class %q with code %s.\n", class.Name, class.Code)
	case "update":
		if err := requireFlag(fs, *id > 0); err != nil {
			return err
		}
		if _, err := page.UpdateClass(*id, admin.ClassForm{Name: *name}); err != nil {
			return err
		}
		cli.printf("Updated class %d.\n", *id)
	case "delete":
		if err := requireFlag(fs, *id > 0); err != nil {
			return err
		}
		cli.printf("Delete class %d and its beds? [y/N] ", *id)
		line, _ := cli.in.ReadString('\n')
		if !yes(line) {
			cli.println("Canceled.")
			return nil
		}
		if err := page.DeleteClass(*id); err != nil {
			return err
		}
		cli.printf("Deleted class %d.\n", *id)
	default:
		cli.printUsage()
		return errHelp
	}

	cli.printClasses(page.Classes())
	return nil
}

func (cli *commandLine) beds(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	fs := cli.newFlagSet("beds " + sub)
	id := fs.Int("id", 0, "The bed id.")
	classID := fs.Int("class", 0, "The owning class id.")
	name := fs.String("name", "", "The bed name.")
	device := fs.String("device", "", "The sensor device id.")
	location := fs.String("location", "", "Where the bed stands.")
	status := fs.String("status", "", "active or inactive (update only).")
	if err := parse(fs, args); err != nil {
		return err
	}
	form := admin.HydroBedForm{
		ClassID:  *classID,
		Name:     *name,
		DeviceID: *device,
		Location: *location,
		Status:   *status,
	}

	scope := view.NewScope(ctx)
	defer scope.Unmount()
	page, err := cli.adminPage(scope, admin.TabBeds)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
	case "create":
		bed, err := page.CreateHydroBed(form)
		if err != nil {
			return err
		}
		cli.printf("Created bed %q.\n", bed.Name)
	case "update":
		if err := requireFlag(fs, *id > 0); err != nil {
			return err
		}
		if _, err := page.UpdateHydroBed(*id, form); err != nil {
			return err
		}
		cli.printf("Updated bed %d.\n", *id)
	case "delete":
		if err := requireFlag(fs, *id > 0); err != nil {
			return err
		}
		cli.printf("Delete bed %d? [y/N] ", *id)
		line, _ := cli.in.ReadString('\n')
		if !yes(line) {
			cli.println("Canceled.")
			return nil
		}
		if err := page.DeleteHydroBed(*id); err != nil {
			return err
		}
		cli.printf("Deleted bed %d.\n", *id)
	default:
		cli.printUsage()
		return errHelp
	}

	cli.printBeds(page.HydroBeds())
	return nil
}
