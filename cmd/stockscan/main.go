package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/bearcats-racing/stockchecker/internal/api"
	"github.com/bearcats-racing/stockchecker/internal/capture"
	"github.com/bearcats-racing/stockchecker/internal/capture/wsfeed"
	"github.com/bearcats-racing/stockchecker/internal/config"
	"github.com/bearcats-racing/stockchecker/internal/draft"
	"github.com/bearcats-racing/stockchecker/internal/imaging"
	"github.com/bearcats-racing/stockchecker/internal/inventory"
	"github.com/bearcats-racing/stockchecker/internal/recognition"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: stockscan <list|add|scan>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		cmdList(os.Args[2:])
	case "add":
		cmdAdd(os.Args[2:])
	case "scan":
		cmdScan(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\nUsage: stockscan <list|add|scan>\n", os.Args[1])
		os.Exit(1)
	}
}

func newClient(configPath string, debug bool) *api.Client {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return api.New(api.Options{
		BaseURL: cfg.APIURL,
		Token:   cfg.Token,
		Timeout: cfg.Timeout(),
	})
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	search := fs.String("search", "", "filter by name or category")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	client := newClient(*configPath, *debug)
	store := inventory.New(client, slog.Default())

	if err := store.Refresh(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	records := store.Filter(*search)
	if len(records) == 0 {
		fmt.Println("No items found matching your search.")
		return
	}

	for _, rec := range records {
		marker := "  "
		if rec.Quantity <= inventory.LowStockThreshold {
			marker = "! "
		}
		fmt.Printf("%s%-30s %-12s %-16s %4d in stock\n", marker, rec.Name, rec.Category, rec.Location, rec.Quantity)
	}
	if low := store.LowStockCount(); low > 0 {
		fmt.Printf("\n%d items low in stock\n", low)
	}
}

func cmdAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	name := fs.String("name", "", "item name")
	category := fs.String("category", "", "item category")
	location := fs.String("location", "", "storage location")
	quantity := fs.Int("quantity", 1, "item quantity")
	imagePath := fs.String("image", "", "path to an item photo (JPEG or PNG)")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	client := newClient(*configPath, *debug)
	builder := draft.NewBuilder(client)
	builder.SetName(*name)
	builder.SetCategory(*category)
	builder.SetLocation(*location)
	builder.SetQuantity(strconv.Itoa(*quantity))

	if *imagePath != "" {
		f, err := os.Open(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		data, err := imaging.Process(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		builder.AttachImage(imaging.DataURI(data))
	}

	record, err := builder.Submit(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %s (%s) x%d as %s\n", record.Name, record.Category, record.Quantity, record.ID)
}

func cmdScan(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	feedURL := fs.String("feed", "", "websocket camera feed URL")
	facing := fs.String("facing", string(capture.FacingEnvironment), "camera facing: environment or user")
	location := fs.String("location", "", "storage location override")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	client := newClient(*configPath, *debug)

	session := capture.NewSession(&wsfeed.Opener{URL: *feedURL})
	ctx := context.Background()

	if err := session.Start(ctx, capture.Facing(*facing)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	image, err := session.CaptureFrame(ctx)
	if err != nil {
		session.Stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	recognizer := recognition.NewClient(client, slog.Default())
	result, err := recognizer.Recognize(ctx, image)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (fill in the item manually with 'stockscan add')\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recognized: %s\n", result)

	builder := draft.NewBuilder(client)
	builder.ApplyRecognition(result)
	if *location != "" {
		builder.SetLocation(*location)
	}
	builder.AttachImage(imaging.DataURI(image))

	record, err := builder.Submit(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %s (%s) x%d as %s\n", record.Name, record.Category, record.Quantity, record.ID)
}
