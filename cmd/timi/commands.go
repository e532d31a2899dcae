package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/NCUHOME-Y/TimiFocus/internal/analytics"
	"github.com/NCUHOME-Y/TimiFocus/internal/engine"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	"github.com/NCUHOME-Y/TimiFocus/internal/timer"
)

func startCmd(a *app) *cobra.Command {
	var (
		kind    string
		minutes int
		task    uint
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a focus interval or a break and follow it",
		Long: `Start an interval and show the countdown.
Keys while running: p pause, r resume, c cancel, q detach (the interval keeps running).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := models.Kind(kind)
			if !k.Valid() {
				return fmt.Errorf("unknown kind %q", kind)
			}
			req := engine.StartRequest{Kind: k}
			if minutes > 0 {
				req.Minutes = &minutes
			}
			if task > 0 {
				req.SubjectID = &task
			}

			eng := a.engine()
			ctx := cmd.Context()
			if _, err := eng.Attach(ctx); err != nil {
				return err
			}
			if s, err := eng.Start(ctx, req); err != nil {
				return err
			} else if s.State != timer.StateRunning {
				return fmt.Errorf("timer did not start (state %s)", s.State)
			}
			return a.follow(cmd, eng)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(models.KindWork), "work, short_break, long_break or custom_work")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "duration in minutes (default from settings)")
	cmd.Flags().UintVarP(&task, "task", "t", 0, "task id this interval works on")
	return cmd
}

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-attach to the open interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := a.engine()
			s, err := eng.Attach(cmd.Context())
			if err != nil {
				return err
			}
			if s.State == timer.StateIdle {
				eng.Close()
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no open interval"))
				return nil
			}
			return a.follow(cmd, eng)
		},
	}
}

func cancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the open interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := a.engine()
			defer eng.Close()
			s, err := eng.Attach(cmd.Context())
			if err != nil {
				return err
			}
			if s.State != timer.StateRunning && s.State != timer.StatePaused {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("nothing to cancel"))
				return nil
			}
			if err := eng.Cancel(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled #%d\n", s.IntervalID)
			return nil
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the open interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			iv, err := a.client.Open(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderInterval(iv, time.Now()))
			return nil
		},
	}
}

// follow 渲染倒计时直到完成、取消或脱离；脱离时区间仍在服务端计时
func (a *app) follow(cmd *cobra.Command, eng *engine.Engine) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()
	startedAt := eng.Snapshot().StartedAt

	finished := make(chan timer.Snapshot, 1)
	unsub := eng.Subscribe(func(s timer.Snapshot) {
		fmt.Fprint(out, "\r"+renderTick(s)+"  ")
		if s.State == timer.StateCompleted || s.State == timer.StateIdle {
			select {
			case finished <- s:
			default:
			}
		}
	})
	defer unsub()

	keys := make(chan string)
	go readKeys(cmd.InOrStdin(), keys)

	go func() { _ = eng.Run(ctx) }()
	fmt.Fprint(out, renderTick(eng.Snapshot()))

	for {
		select {
		case s := <-finished:
			eng.Close()
			fmt.Fprintln(out)
			if s.State == timer.StateIdle {
				fmt.Fprintln(out, mutedStyle.Render("interval closed"))
				return nil
			}
			a.reportCompletion(cmd, eng, startedAt)
			return nil
		case k := <-keys:
			if err := a.handleKey(ctx, eng, k); errors.Is(err, errDetach) {
				eng.Close()
				fmt.Fprintln(out, "\n"+mutedStyle.Render("detached; run `timi watch` to follow again"))
				return nil
			} else if err != nil {
				fmt.Fprintln(out, "\n"+errorStyle.Render(describe(err)))
			}
		case <-ctx.Done():
			eng.Close()
			fmt.Fprintln(out, "\n"+mutedStyle.Render("detached; run `timi watch` to follow again"))
			return nil
		}
	}
}

var errDetach = errors.New("detach")

func (a *app) handleKey(ctx context.Context, eng *engine.Engine, k string) error {
	switch k {
	case "p":
		return eng.Pause()
	case "r":
		return eng.Resume()
	case "c":
		return eng.Cancel(ctx)
	case "q":
		return errDetach
	}
	return nil
}

func readKeys(r io.Reader, out chan<- string) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out <- strings.ToLower(strings.TrimSpace(sc.Text()))
	}
}

func (a *app) reportCompletion(cmd *cobra.Command, eng *engine.Engine, startedAt time.Time) {
	out := cmd.OutOrStdout()
	s := eng.Snapshot()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s done!", kindLabel(s.Kind))))
	if eng.PendingNotifications() > 0 {
		fmt.Fprintln(out, errorStyle.Render("could not reach the server; the interval will be closed on the next command"))
		return
	}
	count, size := eng.SetProgress()
	fmt.Fprintln(out, renderSetProgress(count, size))
	if s.Kind.Qualifying() {
		fmt.Fprintf(out, "next: %s (timi start -k %s)\n", kindLabel(eng.RecommendBreak()), eng.RecommendBreak())
	}

	achs, err := a.client.Achievements(cmd.Context())
	if err != nil {
		a.log.Debug("load achievements failed", "err", err)
		return
	}
	for _, ach := range achs {
		if ach.UnlockedAt != nil && !ach.UnlockedAt.Before(startedAt) {
			fmt.Fprintln(out, goldStyle.Render("★ achievement unlocked: "+ach.Name))
		}
	}
}

func taskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "task", Short: "Manage tasks"}
	cmd.AddCommand(&cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.client.CreateTask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task #%d %s\n", t.ID, t.Title)
			return nil
		},
	})

	var manual int
	done := &cobra.Command{
		Use:   "done [id]",
		Short: "Toggle a task's completion; closes its running interval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad task id %q", args[0])
			}
			ctx := cmd.Context()
			var t models.Task
			if manual > 0 {
				t, err = a.client.ToggleCompletion(ctx, uint(id), nil, &manual)
			} else {
				eng := a.engine()
				defer eng.Close()
				if _, err := eng.Attach(ctx); err != nil {
					return err
				}
				t, err = eng.CompleteTask(ctx, uint(id))
			}
			if err != nil {
				return err
			}
			state := "open"
			if t.IsCompleted {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task #%d %s: %s, %d min logged\n", t.ID, t.Title, state, t.LoggedMinutes)
			return nil
		},
	}
	done.Flags().IntVar(&manual, "manual", 0, "record minutes worked without the timer")
	cmd.AddCommand(done)
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show streak, level, score and summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := analytics.ParsePeriod(period)
			if !ok {
				return fmt.Errorf("period must be today, 7days, 30days or all")
			}
			ctx := cmd.Context()
			st, err := a.client.Streak(ctx)
			if err != nil {
				return err
			}
			lv, err := a.client.Level(ctx)
			if err != nil {
				return err
			}
			sc, err := a.client.Score(ctx, p)
			if err != nil {
				return err
			}
			sum, err := a.client.Summary(ctx, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(st, lv, sc, sum))
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", string(analytics.DefaultPeriod), "today, 7days, 30days or all")
	return cmd
}

func achievementsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.Achievements(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderAchievements(list))
			return nil
		},
	}
}

func settingsCmd(a *app) *cobra.Command {
	var work, short, long, setSize int
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change timer defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := map[string]int{}
			flags := map[string]*int{
				"work":  &work,
				"short": &short,
				"long":  &long,
				"set":   &setSize,
			}
			keys := map[string]string{
				"work":  models.SettingWorkDuration,
				"short": models.SettingShortBreakDuration,
				"long":  models.SettingLongBreakDuration,
				"set":   models.SettingSetSize,
			}
			for name, v := range flags {
				if cmd.Flags().Changed(name) {
					changes[keys[name]] = *v
				}
			}

			var (
				values map[string]int
				err    error
			)
			if len(changes) > 0 {
				values, err = a.client.UpdateSettings(cmd.Context(), changes)
			} else {
				values, err = a.client.All(cmd.Context())
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, k := range []string{
				models.SettingWorkDuration,
				models.SettingShortBreakDuration,
				models.SettingLongBreakDuration,
				models.SettingSetSize,
			} {
				fmt.Fprintf(out, "%-22s %d\n", k, values[k])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&work, "work", 0, "work minutes")
	cmd.Flags().IntVar(&short, "short", 0, "short break minutes")
	cmd.Flags().IntVar(&long, "long", 0, "long break minutes")
	cmd.Flags().IntVar(&setSize, "set", 0, "work intervals per set")
	return cmd
}
