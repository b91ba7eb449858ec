package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/veriwave/veriwave/pkg/logger"
	"github.com/veriwave/veriwave/pkg/veriwave"
	"github.com/veriwave/veriwave/pkg/veriwave/audio"
	"github.com/veriwave/veriwave/pkg/veriwave/model"
)

// Global flags
var (
	dbPath      string
	tempDir     string
	sampleRate  int
	segmentSecs float64
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("VERIWAVE_DB_PATH", "veriwave.sqlite3"), "Path to the SQLite database file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("VERIWAVE_TEMP_DIR", "/tmp"), "Directory for temporary audio conversion files")
	flag.IntVar(&sampleRate, "rate", audio.DefaultSampleRate, "Audio sample rate for processing")
	flag.Float64Var(&segmentSecs, "segment", 5.0, "Segment duration in seconds")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func createService() (veriwave.Service, error) {
	return veriwave.NewService(
		veriwave.WithDBPath(dbPath),
		veriwave.WithTempDir(tempDir),
		veriwave.WithSampleRate(sampleRate),
		veriwave.WithSegmentDuration(segmentSecs),
	)
}

func main() {
	_ = godotenv.Load()
	log := logger.GetLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Infof("Executing command: %s", command)

	switch command {
	case "store":
		handleStore()
	case "verify":
		handleVerify()
	case "info":
		handleInfo()
	case "list":
		handleList()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleStore() {
	log := logger.GetLogger()

	storeCmd := flag.NewFlagSet("store", flag.ExitOnError)
	name := storeCmd.String("name", "", "Name for the stored reference recording (required)")

	args := os.Args[2:]
	var audioPath string
	if len(args) > 0 && args[0][0] != '-' {
		audioPath = args[0]
		args = args[1:]
	}
	storeCmd.Parse(args)

	if audioPath == "" || *name == "" {
		fmt.Println("Usage: veriwave store <audio_file> --name <name>")
		os.Exit(1)
	}

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("Fingerprinting recording...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	id, err := svc.StoreRecording(ctx, audioPath, *name)
	if err != nil {
		fmt.Printf("Failed to store recording: %v\n", err)
		log.Errorf("StoreRecording failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\nStored reference recording:")
	fmt.Printf("   ID:   %s\n", id)
	fmt.Printf("   Name: %s\n", *name)
}

func handleVerify() {
	log := logger.GetLogger()

	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	id := verifyCmd.String("id", "", "Recording ID of the stored reference (required)")

	args := os.Args[2:]
	var audioPath string
	if len(args) > 0 && args[0][0] != '-' {
		audioPath = args[0]
		args = args[1:]
	}
	verifyCmd.Parse(args)

	if audioPath == "" || *id == "" {
		fmt.Println("Usage: veriwave verify <audio_file> --id <recording_id>")
		os.Exit(1)
	}

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("Verifying recording against stored reference...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	verdict, err := svc.VerifyFile(ctx, audioPath, *id)
	if err != nil {
		fmt.Printf("Verification failed: %v\n", err)
		log.Errorf("VerifyFile failed: %v", err)
		os.Exit(1)
	}

	printVerdict(verdict)
}

func printVerdict(v *model.VerificationVerdict) {
	fmt.Println()
	switch v.Status {
	case model.StatusFullyVerified:
		color.Green("Status: %s", v.Status)
	case model.StatusPartialVerified:
		color.Yellow("Status: %s", v.Status)
	default:
		color.Red("Status: %s", v.Status)
	}

	fmt.Printf("   Segments:   %d total, %d valid, %d tampered, %d missing, %d extra\n",
		v.TotalSegments, v.ValidSegments, v.TamperedSegments, v.MissingSegments, v.ExtraSegments)
	fmt.Printf("   Similarity: %.4f\n", v.AvgSimilarity)
	if !v.IndustryUsed {
		color.Yellow("   Industry fingerprint vote unavailable for this run")
	}

	if len(v.TamperedRegions) > 0 {
		color.Red("\n   Tampered regions:")
		for _, r := range v.TamperedRegions {
			color.Red("     [%7.2fs - %7.2fs]  similarity %.4f", r.StartTime, r.EndTime, r.Similarity)
		}
	}
	if len(v.ValidRegions) > 0 {
		fmt.Println("\n   Valid regions:")
		for _, r := range v.ValidRegions {
			kind := "perceptual"
			if r.ExactMatch {
				kind = "exact"
			}
			fmt.Printf("     [%7.2fs - %7.2fs]  %s\n", r.StartTime, r.EndTime, kind)
		}
	}
}

func handleInfo() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: veriwave info <audio_file>")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	meta, err := audio.ReadMetadata(ctx, os.Args[2])
	if err != nil {
		fmt.Printf("Failed to probe file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%s\n", meta.Filename)
	if meta.Title != "" {
		fmt.Printf("   Title:       %s\n", meta.Title)
	}
	fmt.Printf("   Format:      %s\n", meta.Format)
	fmt.Printf("   Duration:    %.2fs\n", meta.DurationSec)
	fmt.Printf("   Sample rate: %d Hz\n", meta.SampleRate)
	fmt.Printf("   Channels:    %d\n", meta.Channels)
	if meta.BitDepth > 0 {
		fmt.Printf("   Bit depth:   %d\n", meta.BitDepth)
	}
}

func handleList() {
	log := logger.GetLogger()

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	recordings, err := svc.ListRecordings()
	if err != nil {
		fmt.Printf("Failed to list recordings: %v\n", err)
		log.Errorf("ListRecordings failed: %v", err)
		os.Exit(1)
	}

	if len(recordings) == 0 {
		fmt.Println("\nNo recordings stored")
		return
	}

	fmt.Printf("\nFound %d recording(s):\n\n", len(recordings))
	for i, rec := range recordings {
		fmt.Printf("%d. %s (ID: %s)\n", i+1, rec.Name, rec.ID)
		if rec.DurationMs > 0 {
			duration := rec.DurationMs / 1000
			fmt.Printf("   Duration: %d:%02d at %d Hz\n", duration/60, duration%60, rec.SampleRate)
		}
	}
}

func handleDelete() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: veriwave delete <recording_id>")
		os.Exit(1)
	}
	id := os.Args[2]

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	if err := svc.DeleteRecording(id); err != nil {
		fmt.Printf("Failed to delete recording: %v\n", err)
		log.Errorf("DeleteRecording failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted recording %s\n", id)
}

func printUsage() {
	fmt.Println("veriwave - Audio Recording Authentication CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        Path to SQLite database (env: VERIWAVE_DB_PATH, default: veriwave.sqlite3)")
	fmt.Println("  --temp <dir>       Temporary directory for audio conversion (env: VERIWAVE_TEMP_DIR, default: /tmp)")
	fmt.Println("  --rate <hz>        Audio sample rate (default: 22050)")
	fmt.Println("  --segment <secs>   Segment duration in seconds (default: 5)")
	fmt.Println("\nUsage:")
	fmt.Println("  veriwave [global-options] store <audio_file> --name <name>")
	fmt.Println("  veriwave [global-options] verify <audio_file> --id <recording_id>")
	fmt.Println("  veriwave info <audio_file>")
	fmt.Println("  veriwave [global-options] list")
	fmt.Println("  veriwave [global-options] delete <recording_id>")
	fmt.Println("\nExamples:")
	fmt.Println("  # Store a reference recording")
	fmt.Println("  veriwave --db mydb.sqlite3 store interview.wav --name \"board-meeting-2026-08\"")
	fmt.Println()
	fmt.Println("  # Verify a candidate copy against it")
	fmt.Println("  veriwave --db mydb.sqlite3 verify interview-copy.mp3 --id <recording_id>")
}
