package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tarasboiko2005/AirportAPI/pkg/client"
	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

type paymentsLoadedMsg struct {
	payments []domain.Payment
	err      error
}

type paymentsModel struct {
	client   *client.Client
	payments []domain.Payment
	loading  bool
	err      string
	width    int
	height   int
}

func newPaymentsModel(c *client.Client) paymentsModel {
	return paymentsModel{client: c, loading: true}
}

func (m paymentsModel) Init() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		page, err := c.ListPayments(context.Background(), client.ListOptions{})
		if err != nil {
			return paymentsLoadedMsg{err: err}
		}
		return paymentsLoadedMsg{payments: page.Results}
	}
}

func (m paymentsModel) Update(msg tea.Msg) (paymentsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case paymentsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, errorCmd(msg.err)
		}
		m.err = ""
		m.payments = msg.payments
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.Init()
		}
	}
	return m, nil
}

func (m paymentsModel) View() string {
	switch {
	case m.loading && len(m.payments) == 0:
		return " " + dimStyle.Render("loading payments...")
	case m.err != "":
		return " " + errorStyle.Render("error: "+m.err)
	case len(m.payments) == 0:
		return " " + dimStyle.Render("no payments yet")
	}

	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render(fmt.Sprintf("%-7s %-8s %14s  %-10s %s", "PAYMENT", "ORDER", "AMOUNT", "STATUS", "CREATED")) + "\n")
	for _, p := range m.payments {
		status := p.Status
		switch status {
		case "paid", "succeeded":
			status = okStyle.Render(padRight(status, 10))
		case "failed", "expired":
			status = errorStyle.Render(padRight(status, 10))
		default:
			status = dimStyle.Render(padRight(status, 10))
		}
		b.WriteString(" " + fmt.Sprintf("%-7s %-8s %14s  %s %s",
			fmt.Sprintf("#%d", p.ID),
			fmt.Sprintf("#%d", p.Order),
			p.Amount+" "+p.Currency,
			status,
			dimStyle.Render(formatAge(p.CreatedAt)),
		) + "\n")
	}
	return b.String()
}
