package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/kazz187/teamboard/internal/client"
	"github.com/kazz187/teamboard/internal/lifecycle"
	"github.com/kazz187/teamboard/internal/task"
	"github.com/kazz187/teamboard/internal/trash"
)

var (
	app    = kingpin.New("teamboard", "Command line client for the teamboard API")
	addr   = app.Flag("addr", "Server address; overrides TEAMBOARD_CLI_ADDR").String()
	apiKey = app.Flag("api-key", "API key; overrides TEAMBOARD_CLI_API_KEY").String()

	// Task commands
	taskCmd = app.Command("task", "Task commands")

	taskCreateCmd      = taskCmd.Command("create", "Create a task")
	taskCreateTitle    = taskCreateCmd.Arg("title", "Task title").Required().String()
	taskCreatePriority = taskCreateCmd.Flag("priority", "Priority (low, medium, high)").Default("medium").Enum("low", "medium", "high")
	taskCreateDue      = taskCreateCmd.Flag("due", "Due date (YYYY-MM-DD)").String()
	taskCreateAssignee = taskCreateCmd.Flag("assignee", "Assignee").String()

	taskListCmd      = taskCmd.Command("list", "List tasks")
	taskListStatus   = taskListCmd.Flag("status", "Filter by status").String()
	taskListAssignee = taskListCmd.Flag("assignee", "Filter by assignee").String()

	taskTrashCmd = taskCmd.Command("trash", "Move a task to the trash")
	taskTrashID  = taskTrashCmd.Arg("id", "Task ID").Required().String()

	// Trash commands
	trashCmd = app.Command("trash", "Trash commands")

	trashListCmd = trashCmd.Command("list", "List trash entries")

	trashRestoreCmd = trashCmd.Command("restore", "Restore a trash entry")
	trashRestoreID  = trashRestoreCmd.Arg("id", "Trash entry ID").Required().String()

	trashDeleteCmd = trashCmd.Command("delete", "Permanently delete a trash entry")
	trashDeleteID  = trashDeleteCmd.Arg("id", "Trash entry ID").Required().String()

	trashEmptyCmd = trashCmd.Command("empty", "Permanently delete every trash entry")

	trashSweepCmd = trashCmd.Command("sweep", "Purge expired entries and reconcile duplicates now")
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	idColor    = color.New(color.FgCyan)
	warnColor  = color.New(color.FgYellow)
	okColor    = color.New(color.FgGreen)
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := NewConfig()
	if err != nil {
		fatal(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *apiKey != "" {
		cfg.APIKey = *apiKey
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(cfg.Addr, cfg.APIKey)
	if err := run(ctx, c, command, os.Stdout); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, c *client.Client, command string, w io.Writer) error {
	switch command {
	case taskCreateCmd.FullCommand():
		t, err := c.CreateTask(ctx, &task.CreateTaskRequest{
			Title:    *taskCreateTitle,
			Priority: task.Priority(*taskCreatePriority),
			DueDate:  *taskCreateDue,
			Assignee: *taskCreateAssignee,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "created task %s\n", idColor.Sprint(t.ID))

	case taskListCmd.FullCommand():
		q := url.Values{}
		if *taskListStatus != "" {
			q.Set("status", *taskListStatus)
		}
		if *taskListAssignee != "" {
			q.Set("assignee", *taskListAssignee)
		}
		tasks, err := c.ListTasks(ctx, q)
		if err != nil {
			return err
		}
		printTasks(w, tasks)

	case taskTrashCmd.FullCommand():
		e, err := c.MoveToTrash(ctx, *taskTrashID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "moved %q to trash as %s (%d days remaining)\n", e.Title, idColor.Sprint(e.ID), e.DaysRemaining)

	case trashListCmd.FullCommand():
		entries, err := c.ListTrash(ctx)
		if err != nil {
			return err
		}
		printTrash(w, entries)

	case trashRestoreCmd.FullCommand():
		t, err := c.Restore(ctx, *trashRestoreID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "restored task %s %q\n", idColor.Sprint(t.ID), t.Title)

	case trashDeleteCmd.FullCommand():
		resp, err := c.PermanentlyDelete(ctx, *trashDeleteID)
		if err != nil {
			return err
		}
		if resp.Deleted {
			fmt.Fprintf(w, "deleted %s\n", idColor.Sprint(resp.ID))
		} else {
			fmt.Fprintf(w, "%s was already gone\n", idColor.Sprint(resp.ID))
		}

	case trashEmptyCmd.FullCommand():
		resp, err := c.EmptyTrash(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "removed %d entries\n", len(resp.Removed))

	case trashSweepCmd.FullCommand():
		res, err := c.Sweep(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "purged %d expired entries\n", len(res.Purged))
		for _, r := range res.Reconciled {
			fmt.Fprintf(w, "reconciled task %s: %s\n", idColor.Sprint(r.TaskID), describeOutcome(r.Outcome))
		}

	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func printTasks(w io.Writer, tasks []*task.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tSTATUS\tDUE\tASSIGNEE\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Priority, t.Status, t.DueDate, t.Assignee, t.Title)
	}
	tw.Flush()
}

func printTrash(w io.Writer, entries []*lifecycle.EntryView) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK\tREMOVED\tREMAINING\tTITLE")
	for _, e := range entries {
		remaining := fmt.Sprintf("%dd", e.DaysRemaining)
		switch {
		case e.DaysRemaining <= 0:
			remaining = errorColor.Sprint("expired")
		case e.DaysRemaining <= trash.ExpiringSoonDays:
			remaining = warnColor.Sprint(remaining)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.TaskID, e.RemovedAt.Local().Format(time.DateTime), remaining, e.Title)
	}
	tw.Flush()
}

func describeOutcome(o lifecycle.Outcome) string {
	switch o {
	case lifecycle.OutcomeKeptTask:
		return okColor.Sprint("kept live task")
	case lifecycle.OutcomeKeptTrash:
		return warnColor.Sprint("kept trash entry")
	case lifecycle.OutcomeDroppedOlderEntry:
		return warnColor.Sprint("dropped older trash entry")
	}
	return string(o)
}

func fatal(err error) {
	errorColor.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
