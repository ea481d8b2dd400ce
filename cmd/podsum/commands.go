package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/anatolykoptev/go-kit/env"

	"github.com/anatolykoptev/go_podcast/internal/channels"
	"github.com/anatolykoptev/go_podcast/internal/digest"
	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/report"
	"github.com/anatolykoptev/go_podcast/internal/watch"
)

func runDigest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("podsum", flag.ContinueOnError)
	c := commonFlags(fs)
	days := fs.Int("days", 0, "Days to look back (default: days_lookback from channels.yaml)")
	limit := fs.Int("limit", 0, "Videos per channel (default: videos_per_channel from channels.yaml)")
	pdf := fs.Bool("pdf", false, "Also render the digest as PDF (pandoc)")
	email := fs.Bool("email", false, "E-mail the digest using the settings.yaml email block")
	dryRun := fs.Bool("dry-run", false, "Only list the videos that would be processed")
	summaries := fs.Bool("summaries", false, "Also write a narrative summary per video")
	style := fs.String("template", engine.StyleBlog, "Summary style: blog, insights, brief")
	reprocess := fs.Bool("reprocess", false, "Process videos already in the history again")
	handles, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.Runner.Run(ctx, digest.Options{
		Channels:     handles,
		DaysBack:     *days,
		Limit:        *limit,
		DryRun:       *dryRun,
		SkipExisting: !*reprocess,
		Summaries:    *summaries,
		Style:        *style,
	})
	if err != nil {
		return err
	}
	if *dryRun {
		fmt.Print(report.Plan(rep))
		return nil
	}

	path, md, err := digest.WriteReport(rep, a.OutputDir)
	if err != nil {
		return err
	}
	fmt.Println(path)

	attachments := []string{path}
	if *pdf {
		pdfPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
		switch err := report.ConvertPDF(ctx, path, pdfPath); {
		case err == nil:
			attachments = append(attachments, pdfPath)
			fmt.Println(pdfPath)
		case errors.Is(err, report.ErrPandocMissing):
			htmlPath := strings.TrimSuffix(pdfPath, ".pdf") + ".html"
			attachments = append(attachments, htmlPath)
			fmt.Println(htmlPath)
		default:
			slog.Error("pdf failed", slog.Any("error", err))
		}
	}

	if *email {
		if err := sendDigest(a.Channels.Settings().Email, rep, md, attachments); err != nil {
			return err
		}
	}
	return nil
}

func sendDigest(cfg channels.Email, rep engine.RunReport, md string, attachments []string) error {
	if !cfg.Enabled {
		return errors.New("email is disabled in settings.yaml")
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	m := report.NewMailer(report.MailConfig{
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		Username: cfg.Username,
		Password: env.Str("SMTP_PASSWORD", ""),
		From:     from,
		To:       cfg.To,
	})
	day := rep.Started
	if day.IsZero() {
		day = time.Now()
	}
	subject := fmt.Sprintf("Podcast Digest %s (%d videos)", day.Format("2006-01-02"), len(rep.Analyses))
	if err := m.Send(subject, md, attachments...); err != nil {
		return err
	}
	engine.IncrEmailsSent()
	return nil
}

func runSummarize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("podsum summarize", flag.ContinueOnError)
	c := commonFlags(fs)
	style := fs.String("template", engine.StyleBlog, "Summary style: blog, insights, brief")
	files, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("summarize: transcript file required")
	}

	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, f := range files {
		res, err := digest.SummarizeFile(ctx, f, a.OutputDir, *style)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s, %s)\n", res.Path, res.Style, res.Method)
	}
	return nil
}

func runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("podsum watch", flag.ContinueOnError)
	c := commonFlags(fs)
	style := fs.String("template", engine.StyleBlog, "Summary style: blog, insights, brief")
	settle := fs.Duration("settle", 2*time.Second, "Wait this long after the last write before processing a file")
	dirs, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(dirs) != 1 {
		return errors.New("watch: exactly one directory required")
	}

	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	w := watch.New(dirs[0], func(ctx context.Context, path string) error {
		_, err := digest.SummarizeFile(ctx, path, a.OutputDir, *style)
		return err
	}, *settle)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runChannels(args []string) error {
	fs := flag.NewFlagSet("podsum channels", flag.ContinueOnError)
	config := fs.String("config", env.Str("PODCAST_CONFIG_DIR", "config"), "Directory holding channels.yaml and settings.yaml")
	name := fs.String("name", "", "Display name (add)")
	category := fs.String("category", "general", "Category (add)")
	priority := fs.String("priority", channels.PriorityMedium, "Priority: high, medium, low (add)")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	m, err := channels.Open(*config)
	if err != nil {
		return err
	}
	action := "list"
	if len(rest) > 0 {
		action, rest = rest[0], rest[1:]
	}
	if action != "list" && len(rest) != 1 {
		return fmt.Errorf("channels %s: one handle required", action)
	}

	switch action {
	case "list":
		return printChannels(m.All())
	case "add":
		return m.Add(rest[0], *name, *category, *priority, true)
	case "remove":
		return m.Remove(rest[0])
	case "enable":
		return m.SetEnabled(rest[0], true)
	case "disable":
		return m.SetEnabled(rest[0], false)
	}
	return fmt.Errorf("channels: unknown action %q", action)
}

func printChannels(list []channels.Channel) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tNAME\tCATEGORY\tPRIORITY\tENABLED\tLAST PROCESSED")
	for _, c := range list {
		last := c.LastProcessed
		if last == "" {
			last = "-"
		}
		fmt.Fprintf(tw, "@%s\t%s\t%s\t%s\t%t\t%s\n", c.Handle, c.DisplayName, c.Category, c.Priority, c.Enabled, last)
	}
	return tw.Flush()
}
