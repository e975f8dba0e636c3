package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

const checkoutFailed = "Failed to place order. Please try again."

// Guest details sent with every order
var guestCustomer = CustomerInfo{
	Name:  "Guest Customer",
	Email: "guest@example.com",
	Phone: "555-0100",
}

// Model defines the application state
type Model struct {
	mainMenu    list.Model
	menuList    list.Model
	cartTable   table.Model
	notesInput  textinput.Model
	spinner     spinner.Model
	client      *ApiClient
	sessionID   string
	cart        *LocalCart
	fallback    bool
	offline     bool
	loading     bool
	placing     bool
	currentView string
	message     string
	error       string
}

// item represents a main menu entry
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// dishItem represents a menu item in the list
type dishItem struct {
	dish MenuItem
}

func (i dishItem) Title() string {
	return fmt.Sprintf("%s  $%.2f", i.dish.Name, i.dish.Price)
}
func (i dishItem) Description() string {
	if i.dish.Category == "" {
		return i.dish.Description
	}
	return fmt.Sprintf("[%s] %s", i.dish.Category, i.dish.Description)
}
func (i dishItem) FilterValue() string { return i.dish.Name }

func initialModel(client *ApiClient, sessionID string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := []list.Item{
		item{title: "Menu", desc: "Browse dishes and add them to your cart"},
		item{title: "Cart", desc: "Review your cart and check out"},
		item{title: "About", desc: "About the restaurant"},
		item{title: "Contact", desc: "Opening hours and how to reach us"},
		item{title: "Exit", desc: "Exit the application"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "Bistro"
	mainMenu.SetFilteringEnabled(false)

	menuList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	menuList.Title = "Menu"
	menuList.SetFilteringEnabled(false)

	cartTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Item", Width: 24},
			{Title: "Price", Width: 10},
			{Title: "Qty", Width: 5},
			{Title: "Subtotal", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	ti := textinput.New()
	ti.Placeholder = "Notes for the kitchen (optional)"
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		mainMenu:    mainMenu,
		menuList:    menuList,
		cartTable:   cartTable,
		notesInput:  ti,
		spinner:     s,
		client:      client,
		sessionID:   sessionID,
		cart:        &LocalCart{},
		loading:     true,
		currentView: "main",
	}
}

// Init loads the menu and the session's saved cart
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, checkHealth(m.client), fetchMenu(m.client), fetchCart(m.client, m.sessionID))
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
		m.menuList.SetSize(msg.Width-h, msg.Height-v-2)
		return m, nil
	case tea.KeyMsg:
		if m.currentView == "checkout" && m.notesInput.Focused() {
			return m.updateCheckout(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			m.error = ""
			if m.currentView == "checkout" {
				m.currentView = "cart"
			} else {
				m.currentView = "main"
			}
			return m, nil
		}
		switch m.currentView {
		case "main":
			if msg.String() == "enter" {
				return m.selectMainEntry()
			}
		case "menu":
			if msg.String() == "enter" || msg.String() == "a" {
				return m.addSelectedDish()
			}
		case "cart":
			return m.updateCart(msg)
		}
	case menuMsg:
		m.loading = false
		m.fallback = msg.fallback
		m.menuList.SetItems(dishItems(msg.items))
		return m, nil
	case healthMsg:
		m.offline = !msg.ok
		return m, nil
	case cartMsg:
		m.cart.Replace(msg.items)
		m.refreshCart()
		return m, nil
	case orderPlacedMsg:
		m.placing = false
		m.cart.Clear()
		m.refreshCart()
		m.notesInput.SetValue("")
		m.notesInput.Blur()
		m.error = ""
		m.message = fmt.Sprintf("Order %s placed. Thank you!", msg.order.ID)
		m.currentView = "main"
		return m, nil
	case errorMsg:
		m.placing = false
		m.error = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "menu":
		m.menuList, cmd = m.menuList.Update(msg)
	case "cart":
		m.cartTable, cmd = m.cartTable.Update(msg)
	}
	return m, cmd
}

func (m Model) selectMainEntry() (tea.Model, tea.Cmd) {
	selected, ok := m.mainMenu.SelectedItem().(item)
	if !ok {
		return m, nil
	}
	m.message = ""
	switch selected.title {
	case "Exit":
		return m, tea.Quit
	case "Menu":
		m.currentView = "menu"
	case "Cart":
		m.currentView = "cart"
		m.refreshCart()
	case "About":
		m.currentView = "about"
	case "Contact":
		m.currentView = "contact"
	}
	return m, nil
}

func (m Model) addSelectedDish() (tea.Model, tea.Cmd) {
	selected, ok := m.menuList.SelectedItem().(dishItem)
	if !ok {
		return m, nil
	}
	m.cart.Add(selected.dish)
	m.refreshCart()
	m.message = fmt.Sprintf("Added %s to cart", selected.dish.Name)
	return m, syncCart(m.client, m.sessionID, m.cart.Items())
}

func (m Model) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row := m.cartTable.SelectedRow()
	switch msg.String() {
	case "+", "=":
		if row != nil {
			qty, _ := strconv.Atoi(row[2])
			m.cart.SetQuantity(row[0], qty+1)
			m.refreshCart()
			return m, syncCart(m.client, m.sessionID, m.cart.Items())
		}
	case "-":
		if row != nil {
			qty, _ := strconv.Atoi(row[2])
			m.cart.SetQuantity(row[0], qty-1)
			m.refreshCart()
			return m, syncCart(m.client, m.sessionID, m.cart.Items())
		}
	case "d", "backspace":
		if row != nil {
			m.cart.Remove(row[0])
			m.refreshCart()
			return m, syncCart(m.client, m.sessionID, m.cart.Items())
		}
	case "c":
		if m.cart.Len() == 0 {
			m.error = "Your cart is empty"
			return m, nil
		}
		m.error = ""
		m.currentView = "checkout"
		m.notesInput.Focus()
		return m, textinput.Blink
	default:
		var cmd tea.Cmd
		m.cartTable, cmd = m.cartTable.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateCheckout(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.notesInput.Blur()
		m.error = ""
		m.currentView = "cart"
		return m, nil
	case "enter":
		if m.placing {
			return m, nil
		}
		if m.cart.Len() == 0 {
			m.error = "Your cart is empty"
			return m, nil
		}
		m.placing = true
		m.error = ""
		req := OrderRequest{
			Items:        m.cart.Items(),
			TotalPrice:   roundCents(m.cart.Total()),
			CustomerInfo: guestCustomer,
			SessionID:    m.sessionID,
			Notes:        strings.TrimSpace(m.notesInput.Value()),
		}
		return m, tea.Batch(m.spinner.Tick, placeOrder(m.client, req))
	}
	var cmd tea.Cmd
	m.notesInput, cmd = m.notesInput.Update(msg)
	return m, cmd
}

func (m *Model) refreshCart() {
	m.cartTable.SetRows(cartRows(m.cart.Items()))
	if n := m.cart.Len(); n > 0 && m.cartTable.Cursor() >= n {
		m.cartTable.SetCursor(n - 1)
	}
}

// View renders the UI
func (m Model) View() string {
	var footer string
	if m.message != "" {
		footer += "\n" + successStyle.Render(m.message)
	}
	if m.error != "" {
		footer += "\n" + errorStyle.Render(m.error)
	}

	switch m.currentView {
	case "main":
		header := infoStyle.Render(fmt.Sprintf("Cart: %d items  $%.2f", m.cart.Count(), m.cart.Total()))
		if m.offline {
			header += " " + errorStyle.Render("Server offline, changes are not being saved")
		}
		return docStyle.Render(header + "\n\n" + m.mainMenu.View() + footer)
	case "menu":
		if m.loading {
			return docStyle.Render(m.spinner.View() + " Loading menu...")
		}
		view := m.menuList.View()
		if m.fallback {
			view = errorStyle.Render("Menu service unavailable, showing our usual dishes") + "\n\n" + view
		}
		help := "\nPress 'enter' to add to cart, 'esc' to go back"
		return docStyle.Render(view + help + footer)
	case "cart":
		return docStyle.Render(cartView(m) + footer)
	case "checkout":
		return docStyle.Render(checkoutView(m) + footer)
	case "about":
		view := titleStyle.Render("About") + "\n\n"
		view += "A neighbourhood bistro serving burgers, pizza, salads and desserts.\n"
		view += "Order from the menu, check out, and we will have it ready shortly.\n\n"
		view += "Press 'esc' to return to the main menu"
		return docStyle.Render(view)
	case "contact":
		view := titleStyle.Render("Contact") + "\n\n"
		view += "Phone: 555-0100\n"
		view += "Email: hello@bistro.example\n"
		view += "Hours: Mon-Sun 11:00 - 22:00\n\n"
		view += "Press 'esc' to return to the main menu"
		return docStyle.Render(view)
	default:
		return "Loading..."
	}
}

func cartView(m Model) string {
	view := titleStyle.Render("Your Cart") + "\n\n"
	if m.cart.Len() == 0 {
		view += "Your cart is empty\n"
	} else {
		view += m.cartTable.View() + "\n"
	}
	view += fmt.Sprintf("\nTotal: $%.2f\n", m.cart.Total())
	view += "\n'+'/'-' change quantity, 'd' remove, 'c' checkout, 'esc' back"
	return view
}

func checkoutView(m Model) string {
	view := titleStyle.Render("Checkout") + "\n\n"
	for _, it := range m.cart.Items() {
		view += fmt.Sprintf("%dx %s  $%.2f\n", it.Quantity, it.Name, it.Price*float64(it.Quantity))
	}
	view += fmt.Sprintf("\nTotal: $%.2f\n\n", m.cart.Total())
	view += m.notesInput.View() + "\n\n"
	if m.placing {
		view += m.spinner.View() + " Placing order...\n"
	} else {
		view += "Press 'enter' to place the order, 'esc' to go back\n"
	}
	return view
}

// Custom message types for the tea.Model
type menuMsg struct {
	items    []MenuItem
	fallback bool
}

type cartMsg struct {
	items []CartItem
}

type orderPlacedMsg struct {
	order Order
}

type errorMsg struct {
	err string
}

type healthMsg struct {
	ok bool
}

// checkHealth pings the API once at start-up
func checkHealth(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		if err := client.CheckHealth(); err != nil {
			log.Printf("API health check failed: %v", err)
			return healthMsg{ok: false}
		}
		return healthMsg{ok: true}
	}
}

// fetchMenu loads the menu, falling back to the built-in dishes
func fetchMenu(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		items, err := client.GetMenu()
		if err != nil {
			log.Printf("menu fetch failed: %v", err)
			return menuMsg{items: FallbackMenu(), fallback: true}
		}
		return menuMsg{items: items}
	}
}

// fetchCart loads the session's saved cart
func fetchCart(client *ApiClient, sessionID string) tea.Cmd {
	return func() tea.Msg {
		cart, err := client.GetCart(sessionID)
		if err != nil {
			log.Printf("cart load failed: %v", err)
			return nil
		}
		return cartMsg{items: cart.Items}
	}
}

// syncCart pushes the whole cart; failures are only logged
func syncCart(client *ApiClient, sessionID string, items []CartItem) tea.Cmd {
	return func() tea.Msg {
		if err := client.SaveCart(sessionID, items); err != nil {
			log.Printf("cart sync failed: %v", err)
		}
		return nil
	}
}

// placeOrder submits the order; the local cart is cleared only on success
func placeOrder(client *ApiClient, req OrderRequest) tea.Cmd {
	return func() tea.Msg {
		order, err := client.PlaceOrder(req)
		if err != nil {
			log.Printf("checkout failed: %v", err)
			return errorMsg{err: checkoutFailed}
		}
		return orderPlacedMsg{order: *order}
	}
}

func dishItems(dishes []MenuItem) []list.Item {
	items := make([]list.Item, 0, len(dishes))
	for _, d := range dishes {
		if !d.Available {
			continue
		}
		items = append(items, dishItem{dish: d})
	}
	return items
}

func cartRows(items []CartItem) []table.Row {
	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{
			it.Name,
			fmt.Sprintf("$%.2f", it.Price),
			strconv.Itoa(it.Quantity),
			fmt.Sprintf("$%.2f", it.Price*float64(it.Quantity)),
		}
	}
	return rows
}

func roundCents(v float64) float64 {
	f, _ := strconv.ParseFloat(fmt.Sprintf("%.2f", v), 64)
	return f
}

var (
	apiURL      = flag.String("api", "", "Restaurant API base URL (defaults to RESTAURANT_API_URL)")
	sessionFile = flag.String("session", "", "File holding the session id")
	logFile     = flag.String("log", "bistro-cli.log", "Log file")
)

func main() {
	flag.Parse()

	f, err := tea.LogToFile(*logFile, "bistro")
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	path := *sessionFile
	if path == "" {
		if path, err = DefaultSessionPath(); err != nil {
			fmt.Printf("Error locating session file: %v\n", err)
			os.Exit(1)
		}
	}
	sessionID, err := LoadSession(path)
	if err != nil {
		fmt.Printf("Error loading session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(NewApiClient(*apiURL), sessionID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
