package main

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/cloud-billing-report/pkg/server"
	"github.com/de-tools/cloud-billing-report/pkg/services/config"
	"github.com/de-tools/cloud-billing-report/pkg/services/registry"
	"github.com/de-tools/cloud-billing-report/pkg/services/report"
	"github.com/de-tools/cloud-billing-report/pkg/store/audit"
	"github.com/de-tools/cloud-billing-report/pkg/store/cur"
	"github.com/de-tools/cloud-billing-report/pkg/store/warehouse"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var (
	cfgPath      string
	profilesPath string
	outputDir    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "report",
		Short: "Generate cloud billing and tagging-compliance email reports",
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.json",
		"Path to config.json")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "/tmp/personalizedEmails",
		"Directory the .eml files are written to")

	awsCmd := &cobra.Command{
		Use:   "aws [date]",
		Short: "Generate the AWS billing and compliance report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAWS,
	}

	gcpCmd := &cobra.Command{
		Use:   "gcp [date]",
		Short: "Generate the GCP billing report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGCP,
	}
	gcpCmd.Flags().StringVarP(&profilesPath, "profiles", "p", defaultProfilesPath(),
		"Path to the warehouse DSN profiles file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated reports for preview",
		RunE:  runServe,
	}

	rootCmd.AddCommand(awsCmd, gcpCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAWS(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx := logger.WithContext(cmd.Context())

	day, err := reportDate(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAWS(); err != nil {
		return err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWS.AccessKey, cfg.AWS.SecretKey, "",
		)),
	)
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	billingSource := cur.NewStore(s3.NewFromConfig(awsCfg), cfg.AWS.Bucket, cfg.AWS.ReportPrefix, cfg.AWS.ReportName)
	auditSource := audit.NewStore(audit.DefaultClientFactory(awsCfg))

	generator, err := report.NewAWSGenerator(cfg.AWS, billingSource, auditSource, outputDir)
	if err != nil {
		return err
	}

	logger.Info().Str("date", day.Format(dateLayout)).Msg("generating aws report")
	return generator.Run(ctx, day)
}

func runGCP(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	ctx := logger.WithContext(cmd.Context())

	day, err := reportDate(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateGCP(); err != nil {
		return err
	}

	profiles, err := registry.NewProfileRegistry(profilesPath)
	if err != nil {
		return err
	}
	profile, err := profiles.GetProfile(cfg.GCP.WarehouseProfile)
	if err != nil {
		return err
	}

	db, err := warehouse.Open(profile)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close warehouse connection")
		}
	}()

	generator, err := report.NewGCPGenerator(cfg.GCP, warehouse.NewStore(db, cfg.GCP.Table), outputDir)
	if err != nil {
		return err
	}

	logger.Info().Str("date", day.Format(dateLayout)).Msg("generating gcp report")
	return generator.Run(ctx, day)
}

func runServe(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := newLogger()

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")
	if host == "" || port == "" {
		logger.Error().Msg("Missing server configuration from .env file")
		os.Exit(1)
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            net.JoinHostPort(host, port),
		ShutdownTimeout: 10 * time.Second,
		ReportsDir:      outputDir,
	})
	return api.Start()
}

func defaultProfilesPath() string {
	usr, _ := user.Current()
	return fmt.Sprintf("%s/.billingcfg", usr.HomeDir)
}

func newLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// reportDate parses the optional date argument, defaulting to yesterday.
func reportDate(args []string) (time.Time, error) {
	if len(args) == 0 {
		return time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour), nil
	}
	day, err := time.Parse(dateLayout, args[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse report date %q: %w", args[0], err)
	}
	return day, nil
}
