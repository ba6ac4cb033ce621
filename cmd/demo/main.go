package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"tickerbrief/config"
	"tickerbrief/demo/tui"
)

func main() {
	baseURL := flag.String("url", "", "base URL of the research API (default http://localhost:<PORT>)")
	ticker := flag.String("ticker", "AAPL", "stock ticker symbol")
	exchange := flag.String("exchange", "NASDAQ", "stock exchange")
	companyName := flag.String("name", "", "optional company name for query expansion")
	flag.Parse()

	_ = godotenv.Load()

	url := *baseURL
	if url == "" {
		url = fmt.Sprintf("http://localhost:%s", config.GetEnvOrDefault("PORT", "8080"))
	}

	m := tui.NewModel(url, *ticker, *exchange, *companyName)

	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
