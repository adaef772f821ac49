package controllers

// listPayload wraps a page of items with the cursor for the next page.
func listPayload[T any](items []T, nextCursor string) any {
	if items == nil {
		items = []T{}
	}
	return struct {
		Items      []T    `json:"items"`
		NextCursor string `json:"next_cursor,omitempty"`
	}{Items: items, NextCursor: nextCursor}
}
