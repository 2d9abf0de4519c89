package ai

import (
	"fmt"
	"strings"

	"julianmorley.ca/con-plar/storefront/pkg/mongo"
)

const OrderInsightsSystemPrompt = `You are a friendly personal shopping assistant for an online clothing store.
Given a customer's order history summary, write a short note that:
- Recaps what they have bought and how much they saved
- Points out the categories or pieces they come back to
- Suggests one or two items that would complete their wardrobe
Speak directly to the customer. Keep it to two short paragraphs.`

func formatSpendingPrompt(summary *mongo.SpendingSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Orders placed: %d\n", summary.OrderCount)
	fmt.Fprintf(&b, "Total spent: %.2f\n", summary.TotalSpent)
	fmt.Fprintf(&b, "Total saved through discounts: %.2f\n", summary.TotalSaved)
	fmt.Fprintf(&b, "Average order value: %.2f\n", summary.AvgOrderValue)

	if len(summary.TopProducts) > 0 {
		b.WriteString("Most purchased products:\n")
		for _, p := range summary.TopProducts {
			fmt.Fprintf(&b, "- %s: %d units, %.2f spent\n", p.Name, p.Units, p.Spent)
		}
	}
	return b.String()
}
