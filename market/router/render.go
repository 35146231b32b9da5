package router

import (
	"fmt"

	"github.com/agrisoko/sokobot/market/format"
	"github.com/agrisoko/sokobot/market/model"
)

// listingsChunkSize caps lines per outbound message so long result sets stay
// readable on the messaging platform.
const listingsChunkSize = 15

func listingLine(l model.Listing) string {
	return fmt.Sprintf("- ID %d: %s %s %s @ %s | Min: %s",
		l.ID, l.Commodity, format.Number(l.Quantity), l.Unit, l.Location,
		format.OptionalNumber(l.MinPrice, "N/A"))
}

func chunkListings(listings []model.Listing, size int) [][]string {
	if size <= 0 {
		size = listingsChunkSize
	}
	var chunks [][]string
	var current []string
	for _, l := range listings {
		current = append(current, listingLine(l))
		if len(current) >= size {
			chunks = append(chunks, current)
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
