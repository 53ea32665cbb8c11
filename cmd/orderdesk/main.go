package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agamariel/orderdesk/internal/api"
	"github.com/agamariel/orderdesk/internal/clock"
	"github.com/agamariel/orderdesk/internal/config"
	"github.com/agamariel/orderdesk/internal/models"
	"github.com/agamariel/orderdesk/internal/ui"
)

func main() {
	listFlag := flag.Bool("list", false, "вывести список заказов и выйти")
	deleteFlag := flag.Int64("delete", 0, "удалить заказ по идентификатору и выйти")
	yesFlag := flag.Bool("y", false, "не спрашивать подтверждение удаления")
	cfg := config.Load()

	client := api.New(cfg.APIURL, cfg.HTTPTimeout)
	ctx := context.Background()

	switch {
	case *listFlag:
		if err := runList(ctx, client); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case *deleteFlag != 0:
		confirm := stdinConfirm
		if *yesFlag {
			confirm = func(string) bool { return true }
		}
		if err := runDelete(ctx, client, *deleteFlag, confirm); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	default:
		deps := ui.Deps{Orders: client, Products: client, Clock: clock.NewSystem()}
		p := tea.NewProgram(ui.New(deps), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}
}

// runList разовый режим: печатает список заказов.
func runList(ctx context.Context, orders api.OrdersClient) error {
	list, err := orders.List(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-4s %-12s %-12s %-10s %-10s %s\n", "ID", "Order #", "Date", "Products", "Total", "Status")
	for _, o := range list {
		count := "N/A"
		if o.Items != nil {
			count = strconv.Itoa(len(o.Items))
		}
		fmt.Printf("%-4d %-12s %-12s %-10s %-10s %s\n",
			o.ID, o.OrderNumber, models.NormalizeDate(o.Date), count, o.TotalPrice.StringFixed(2), o.Status)
	}
	return nil
}

// runDelete разовый режим: удаляет заказ после подтверждения.
// Подтверждение передаётся функцией, чтобы его можно было подменить.
func runDelete(ctx context.Context, orders api.OrdersClient, id int64, confirm func(prompt string) bool) error {
	if !confirm(fmt.Sprintf("Delete order %d? (y/N) ", id)) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := orders.Delete(ctx, id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("order %d does not exist", id)
		}
		return err
	}
	fmt.Printf("Order %d deleted.\n", id)
	return nil
}

func stdinConfirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
