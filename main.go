package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"sreality-agents/config"
	"sreality-agents/models"
	"sreality-agents/scraper/sreality"
	"sreality-agents/services"
	"sreality-agents/storage"
	"sreality-agents/utils"
)

func main() {
	categories := flag.String("category", "1", "property type codes 1-5, comma-separated (1=Byty, 2=Domy, 3=Pozemky, 4=Komerční, 5=Ostatní)")
	offers := flag.String("offer", "1", "offer type codes 1-3, comma-separated (1=Prodej, 2=Pronájem, 3=Dražby)")
	regions := flag.String("region", "", "region codes 10-23, comma-separated; empty = whole country")
	maxPages := flag.Int("max-pages", 5, "page cap per combination; 0 = all pages (can take hours)")
	noDetails := flag.Bool("no-details", false, "skip per-listing detail fetches (faster, fewer contacts)")
	out := flag.String("out", "", "XLSX output path override")
	mergeMode := flag.Bool("merge", false, "merge previously exported files given as arguments instead of crawling")
	quiet := flag.Bool("quiet", false, "suppress info and debug logging")
	flag.Parse()

	logger := utils.NewLogger()
	logger.SetQuiet(*quiet)
	cfg := config.Load()

	if *out != "" {
		cfg.XLSXOutputPath = *out
	}

	if *mergeMode {
		runMerge(cfg, logger, flag.Args())
		return
	}

	categoryList, err := parseCodeList(*categories, 1, 5)
	if err != nil {
		logger.Error("Invalid -category: %v", err)
		os.Exit(1)
	}
	offerList, err := parseCodeList(*offers, 1, 3)
	if err != nil {
		logger.Error("Invalid -offer: %v", err)
		os.Exit(1)
	}
	regionList := []int{0}
	if *regions != "" {
		regionList, err = parseCodeList(*regions, 10, 23)
		if err != nil {
			logger.Error("Invalid -region: %v", err)
			os.Exit(1)
		}
	}

	runCrawl(cfg, logger, categoryList, offerList, regionList, *maxPages, !*noDetails)
}

func runCrawl(cfg *config.Config, logger *utils.Logger, categories, offers, regions []int, maxPages int, fetchDetails bool) {
	logger.Info("=== Sreality agent scraper starting ===")

	combinations := len(categories) * len(offers) * len(regions)
	logger.Info("Config — combinations: %d | max pages: %d | details: %v | delay: %d-%dms",
		combinations, maxPages, fetchDetails, cfg.MinDelayMs, cfg.MaxDelayMs)

	scraper := sreality.New(cfg, logger)

	var all []*models.AgentRecord
	crawlErrors := 0
	current := 0

	for _, category := range categories {
		for _, offer := range offers {
			for _, region := range regions {
				current++
				params := sreality.Params{
					CategoryMain: category,
					CategoryType: offer,
					Region:       region,
					MaxPages:     maxPages,
					FetchDetails: fetchDetails,
				}
				if combinations > 1 {
					logger.Info("--- Combination %d/%d: %s ---", current, combinations, params.Describe())
				}

				result := scraper.Scrape(params)
				for _, warning := range result.Warnings {
					logger.Warn("[crawl] %s", warning)
				}
				for _, errMsg := range result.Errors {
					logger.Error("[crawl] %s", errMsg)
					crawlErrors++
				}
				all = append(all, result.Records...)
			}
		}
	}

	if len(all) == 0 {
		logger.Error("No agents were scraped. Exiting.")
		os.Exit(1)
	}

	// Listings overlap between combinations; keep the first record per
	// exact identity key.
	records := services.DedupeExact(all)
	services.SortByListingCount(records)
	logger.Info("Collected %d unique agents (from %d combination records)", len(records), len(all))

	export(cfg, logger, records)

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(records))

	fmt.Printf("  Done. CSV → %s | XLSX → %s\n\n", cfg.CSVOutputPath, cfg.XLSXOutputPath)

	if crawlErrors > 0 {
		os.Exit(1)
	}
}

func runMerge(cfg *config.Config, logger *utils.Logger, paths []string) {
	if len(paths) < 1 && !cfg.PostgresEnabled {
		logger.Error("Merge mode needs exported files as arguments (or POSTGRES_ENABLED=true)")
		os.Exit(1)
	}

	logger.Info("=== Merging %d exported file(s) ===", len(paths))

	var sets [][]*models.AgentRecord
	for _, path := range paths {
		var (
			records []*models.AgentRecord
			err     error
		)
		switch {
		case strings.HasSuffix(strings.ToLower(path), ".xlsx"):
			records, err = storage.ReadXLSX(path)
		default:
			records, err = storage.ReadCSV(path)
		}
		if err != nil {
			logger.Error("Cannot read %s: %v", path, err)
			os.Exit(1)
		}
		logger.Info("Loaded %d records from %s", len(records), path)
		sets = append(sets, records)
	}

	// Agents accumulated in the database join the merge as one more source.
	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), logger)
		if err != nil {
			logger.Error("Cannot read from PostgreSQL: %v", err)
			os.Exit(1)
		}
		stored, err := pgWriter.FetchAll()
		_ = pgWriter.Close()
		if err != nil {
			logger.Error("Cannot read from PostgreSQL: %v", err)
			os.Exit(1)
		}
		logger.Info("Loaded %d records from PostgreSQL", len(stored))
		sets = append(sets, stored)
	}

	merger := services.NewMerger(logger)
	records := merger.Merge(sets...)
	services.SortByListingCount(records)

	export(cfg, logger, records)

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(records))

	fmt.Printf("  Done. %d unique agents → %s\n\n", len(records), cfg.XLSXOutputPath)
}

func export(cfg *config.Config, logger *utils.Logger, records []*models.AgentRecord) {
	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
	} else {
		if err := csvWriter.Write(records); err != nil {
			logger.Error("CSV write failed: %v", err)
		} else {
			logger.Info("Agents saved to %s", cfg.CSVOutputPath)
		}
		_ = csvWriter.Close()
	}

	xlsxWriter, err := storage.NewXLSXWriter(cfg.XLSXOutputPath)
	if err != nil {
		logger.Error("Failed to create XLSX writer: %v", err)
	} else {
		if err := xlsxWriter.Write(records); err != nil {
			logger.Error("XLSX write failed: %v", err)
		} else {
			logger.Info("Formatted workbook saved to %s", cfg.XLSXOutputPath)
		}
		_ = xlsxWriter.Close()
	}

	if !cfg.PostgresEnabled {
		return
	}
	pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		return
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(records); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
	} else {
		logger.Info("Agents stored in PostgreSQL (table: agents)")
	}
}

// parseCodeList parses "1,2" style comma-separated code lists and validates
// the range.
func parseCodeList(input string, min, max int) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", part)
		}
		if code < min || code > max {
			return nil, fmt.Errorf("code %d out of range %d-%d", code, min, max)
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no codes given")
	}
	return codes, nil
}
