package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/stockrank/internal/scheduler"
	"github.com/wonny/stockrank/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the cron scheduler",
	Long: `Run scheduled jobs.

Subcommands:
  start   - start the scheduler and block until Ctrl+C
  list    - list registered jobs
  run     - run one job now and print its result

Registered jobs:
  daily_update      - DAILY_UPDATE_CRON (weekdays 17:30)
  universe_scoring  - SCORING_CRON (weekdays 18:00)`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	fmt.Println("✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Printf("  - %-18s next run %s\n", jobName, next.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-cmd.Context().Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	stats := sched.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Registered jobs:")
	for _, name := range names {
		fmt.Printf("  - %-18s %s\n", name, stats[name].Schedule)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	result, err := sched.RunJob(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	PrintKV("Job", result.JobName)
	PrintKV("Attempts", result.Attempts)
	PrintKV("Duration", result.Duration)
	if !result.Success {
		return fmt.Errorf("job %s failed: %s", result.JobName, result.Error)
	}
	PrintSuccess("Job completed")
	return nil
}

func initScheduler() (*app, *scheduler.Scheduler, error) {
	a, err := newApp()
	if err != nil {
		return nil, nil, err
	}

	strat, _, err := a.strategy("")
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	d := a.cfg.Download
	sched := scheduler.New(a.log)
	if err := sched.AddJob(jobs.NewDailyUpdateJob(a.updater(), d.DailyUpdateCron, d.UpdateFundamentals, a.log)); err != nil {
		a.Close()
		return nil, nil, err
	}

	svc := a.scoringService(strat, a.lookback(0, strat))
	if err := sched.AddJob(jobs.NewScoringJob(svc, d.ScoringCron, a.topN(0, strat), a.log)); err != nil {
		a.Close()
		return nil, nil, err
	}

	return a, sched, nil
}
