package conversation

import (
	"fmt"
	"strings"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/gateway"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/session"
)

const (
	msgNoProducts     = "Sorry, no products available at the moment."
	msgCartEmpty      = "Your cart is empty. Type PRODUCTS to browse."
	msgCheckoutEmpty  = "Your cart is empty. Add some products first!"
	msgCartNowEmpty   = "Cart is now empty. Type PRODUCTS to browse."
	msgNothingToClear = "No active order to cancel. Type MENU to start."
)

var (
	menuButtons = []gateway.Button{
		{ID: "PRODUCTS", Title: "Products"},
		{ID: "CART", Title: "Cart"},
		{ID: "CHECKOUT", Title: "Checkout"},
	}
	reviewButtons = []gateway.Button{
		{ID: "CONFIRM", Title: "Confirm"},
		{ID: "ADD", Title: "Add more"},
		{ID: "CANCEL", Title: "Cancel"},
	}
)

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func menuText() string {
	return "👋 *Welcome to our WhatsApp Store!*\n\n" +
		"What would you like to do?\n\n" +
		"📦 *PRODUCTS* - Browse catalog\n" +
		"🛒 *CART* - View your cart\n" +
		"💳 *CHECKOUT* - Complete order\n\n" +
		"Type any command to begin!"
}

func helpText() string {
	return "❓ *Help Menu*\n\n" +
		"Available commands:\n" +
		"• *MENU* - Main menu\n" +
		"• *PRODUCTS* - Browse products\n" +
		"• *CART* - View cart\n" +
		"• *CHECKOUT* - Place order\n" +
		"• *CANCEL* - Cancel current order\n\n" +
		"When browsing, reply with product numbers to select."
}

func productListText(products []catalog.Product) string {
	var b strings.Builder
	b.WriteString("📦 *Available Products*\n\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, p.Name)
		fmt.Fprintf(&b, "   💰 %s\n", money(p.Price))
		if p.Description != "" {
			fmt.Fprintf(&b, "   📝 %s\n", p.Description)
		}
		fmt.Fprintf(&b, "   🔢 Stock: %d\n\n", p.Stock)
	}
	b.WriteString("\nReply with the number of the product you want to order, or type:\n")
	b.WriteString("• *CART* - View your cart\n")
	b.WriteString("• *CHECKOUT* - Complete order\n")
	b.WriteString("• *CANCEL* - Clear cart")
	return b.String()
}

func selectionText(p catalog.Product) string {
	return fmt.Sprintf("You selected: *%s*\nPrice: %s\nAvailable: %d units\n\n"+
		"How many would you like to order? (Reply with a number)", p.Name, money(p.Price), p.Stock)
}

func addedText(quantity int, name string, itemsInCart int) string {
	return fmt.Sprintf("✅ Added %d x %s to cart!\n\n", quantity, name) +
		fmt.Sprintf("You have %d item(s) in cart.\n\n", itemsInCart) +
		"Type:\n" +
		"• *PRODUCTS* - Add more items\n" +
		"• *CART* - Review cart\n" +
		"• *CHECKOUT* - Complete order"
}

func cartReviewText(lines []session.CartLine, total float64) string {
	var b strings.Builder
	b.WriteString("🛒 *Your Cart Review*\n\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l.Name)
		fmt.Fprintf(&b, "   %d x %s = %s\n\n", l.Quantity, money(l.UnitPrice), money(l.UnitPrice*float64(l.Quantity)))
	}
	fmt.Fprintf(&b, "*Total: %s*\n\n", money(total))
	b.WriteString("Reply:\n")
	b.WriteString("• *CONFIRM* - Place order\n")
	b.WriteString("• *ADD* - Add more items\n")
	b.WriteString("• *REMOVE [number]* - Remove item\n")
	b.WriteString("• *CANCEL* - Cancel order")
	return b.String()
}

func orderConfirmedText(o order.Order) string {
	return "✅ *Order Confirmed!*\n\n" +
		fmt.Sprintf("Order ID: #%s\n", o.ShortID()) +
		fmt.Sprintf("Total: %s\n\n", money(o.TotalAmount)) +
		"Thank you for your order! We'll process it shortly.\n" +
		"Type *MENU* to start a new order."
}

func cancelledText(lines int) string {
	if lines == 0 {
		return msgNothingToClear
	}
	return fmt.Sprintf("Cancelled. Removed %d item(s) from cart. Type MENU to start over.", lines)
}

func removedText(name string) string {
	return fmt.Sprintf("Removed %s from cart.", name)
}

func lowStockText(available int) string {
	return fmt.Sprintf("Sorry, only %d units available. Please try a lower quantity.", available)
}

func checkoutStockText(name string) string {
	return fmt.Sprintf("Sorry, *%s* no longer has enough stock for your order. "+
		"Type CART to review it or REMOVE [number] to drop the item.", name)
}
