package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/miseapp/mise/internal/amazon"
)

const defaultCountry = "US"

func formatProduct(p amazon.Product) string {
	line := p.Title
	if p.Price != "" {
		line += " - " + p.Price
	}
	if p.Rating != "" {
		line += fmt.Sprintf(" (%s stars)", p.Rating)
	}
	if p.URL != "" {
		line += "\n   " + p.URL
	}
	return line
}

// searchWithCache checks the search cache before hitting the API and
// saves fresh results on a miss.
func searchWithCache(ctx context.Context, hctx *Context, query, country string) (*amazon.SearchResult, bool, error) {
	cached, err := hctx.Store.GetCachedSearch(hctx.UserID, query, country)
	if err == nil && cached != nil {
		var result amazon.SearchResult
		if json.Unmarshal(cached.Results, &result) == nil {
			return &result, true, nil
		}
	}

	result, err := hctx.Search.SearchProduct(ctx, query, country)
	if err != nil {
		return nil, false, err
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := hctx.Store.SaveSearch(hctx.UserID, query, country, raw); err != nil {
			// Cache write failure is not worth failing the search over.
			hctx.Progress("search cache write failed: " + err.Error())
		}
	}
	return result, false, nil
}

func handleSearchProduct(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	if hctx.Search == nil {
		return "Product search isn't configured.", nil
	}
	query := stringArg(args, "query", "item", "product")
	if query == "" {
		return "Please tell me what product to search for.", nil
	}
	country := stringArg(args, "country")
	if country == "" {
		country = defaultCountry
	}

	result, fromCache, err := searchWithCache(ctx, hctx, query, country)
	if err != nil {
		return "", fmt.Errorf("product search failed: %w", err)
	}
	if len(result.Products) == 0 {
		return fmt.Sprintf("No products found for '%s'.", query), nil
	}

	hctx.Progress("Executed: searchAmazonProduct")
	prefix := fmt.Sprintf("Top result for '%s'", query)
	if fromCache {
		prefix += " (cached)"
	}
	return prefix + ":\n" + formatProduct(result.Products[0]), nil
}

func handleSearchShoppingList(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	if hctx.Search == nil {
		return "Product search isn't configured.", nil
	}

	items, err := hctx.Store.GetShoppingList(hctx.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get shopping list: %w", err)
	}
	if len(items) == 0 {
		return "Your shopping list is empty, nothing to search for.", nil
	}

	country := stringArg(args, "country")
	if country == "" {
		country = defaultCountry
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for your %d shopping list items:\n\n", len(items))
	found := 0
	for _, item := range items {
		result, _, err := searchWithCache(ctx, hctx, item.Item, country)
		if err != nil {
			fmt.Fprintf(&b, "• %s: search failed (%v)\n", item.Item, err)
			continue
		}
		if len(result.Products) == 0 {
			fmt.Fprintf(&b, "• %s: no products found\n", item.Item)
			continue
		}
		found++
		fmt.Fprintf(&b, "• %s\n", formatProduct(result.Products[0]))
	}
	fmt.Fprintf(&b, "\nFound products for %d of %d items.", found, len(items))

	hctx.Progress("Executed: searchShoppingListOnAmazon")
	return b.String(), nil
}

func handleGetSearchResults(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	searches, err := hctx.Store.ListCachedSearches(hctx.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to read search cache: %w", err)
	}
	if len(searches) == 0 {
		return "No saved search results.", nil
	}

	var b strings.Builder
	b.WriteString("Saved search results:\n")
	for _, c := range searches {
		var result amazon.SearchResult
		if json.Unmarshal(c.Results, &result) != nil || len(result.Products) == 0 {
			continue
		}
		fmt.Fprintf(&b, "• %s (%s): %s\n", c.Query, c.Country, formatProduct(result.Products[0]))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func handleClearSearchCache(ctx context.Context, args map[string]any, hctx *Context) (string, error) {
	query := stringArg(args, "query")
	country := stringArg(args, "country")
	if country == "" {
		country = defaultCountry
	}

	deleted, err := hctx.Store.ClearSearchCache(hctx.UserID, query, country)
	if err != nil {
		return "", fmt.Errorf("failed to clear search cache: %w", err)
	}
	hctx.Progress("Executed: clearAmazonSearchCache")
	return fmt.Sprintf("Cleared %d cached search result(s).", deleted), nil
}
