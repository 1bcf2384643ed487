// package formatter provides functions to render cards and mood forecasts to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/lamarqs/aria/internal/models"
	"github.com/lamarqs/aria/internal/mood"
)

// CardsToCSV converts a card list to CSV with columns: ID, Title, Subtitle, Type, Image
func CardsToCSV(cards []models.Card) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Subtitle", "Type", "Image"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, card := range cards {
		record := []string{card.ID, card.Title, card.Subtitle, string(card.Type), card.Image}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// CardsToText converts a card list to a numbered plain text listing
func CardsToText(title string, cards []models.Card) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s (%d items)\n\n", title, len(cards)))
	for i, card := range cards {
		if card.Subtitle != "" {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, card.Title, card.Subtitle))
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, card.Title))
		}
	}

	return buf.Bytes()
}

// ForecastToMarkdown converts a forecast to a Markdown summary
func ForecastToMarkdown(forecast *mood.Forecast) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Mood Forecast\n\n")
	buf.WriteString(fmt.Sprintf("**Dominant mood**: %s\n", forecast.Dominant))
	buf.WriteString(fmt.Sprintf("**Tracks analyzed**: %d\n", forecast.Total))
	buf.WriteString(fmt.Sprintf("**Average tempo**: %s BPM\n\n", formatTempo(forecast.AvgTempo)))

	buf.WriteString("## Breakdown\n\n")
	for _, share := range forecast.Shares {
		buf.WriteString(fmt.Sprintf("- %s: %d tracks (%.1f%%)\n", share.Mood, share.Count, share.Percent))
	}

	return buf.Bytes()
}

// ForecastToText converts a forecast to plain text
func ForecastToText(forecast *mood.Forecast) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Dominant mood: %s\n", forecast.Dominant))
	buf.WriteString(fmt.Sprintf("Tracks analyzed: %d\n", forecast.Total))
	buf.WriteString(fmt.Sprintf("Average tempo: %s BPM\n\n", formatTempo(forecast.AvgTempo)))

	for _, share := range forecast.Shares {
		buf.WriteString(fmt.Sprintf("%-8s %3d  %5.1f%%\n", share.Mood, share.Count, share.Percent))
	}

	return buf.Bytes()
}

func formatTempo(tempo float64) string {
	return strconv.FormatFloat(tempo, 'f', 0, 64)
}
