// Package shell composes the dashboard: it gates everything behind the
// session, wires the creation form's success signal into a list reset, and
// drives both through a line-oriented terminal interface.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"orderdash/internal/form"
	"orderdash/internal/gateway"
	"orderdash/internal/list"
	"orderdash/internal/model"
	"orderdash/internal/session"
)

type Shell struct {
	session *session.Store
	gw      *gateway.Gateway
	coord   *list.Coordinator
	form    *form.Form

	in  *bufio.Scanner
	out io.Writer
	wmu sync.Mutex // async fetch results and prompts share the writer
}

func New(store *session.Store, gw *gateway.Gateway, in io.Reader, out io.Writer) *Shell {
	s := &Shell{
		session: store,
		gw:      gw,
		in:      bufio.NewScanner(in),
		out:     out,
	}
	s.coord = list.New(gw,
		list.WithSessionExpiredHook(store.Expire),
		list.WithUpdateHook(s.onListUpdate),
	)
	// Creating an order resets the list so the new row shows up without a
	// manual pagination reset.
	s.form = form.New(gw, s.coord.Reset)
	return s
}

func (s *Shell) onListUpdate() {
	snap := s.coord.Snapshot()
	if snap.State == list.StateLoading {
		return
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	fmt.Fprintln(s.out)
	renderList(s.out, snap)
}

func (s *Shell) printf(format string, args ...any) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// Run is the interaction loop. Any command issued without an active session
// drops the user to the login prompt first.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.coord.Run(ctx)

	for {
		if !s.session.Active() {
			if !s.loginGate(ctx) {
				return nil
			}
			s.coord.Reset()
		}

		s.printf("> ")
		line, ok := s.readLine()
		if !ok {
			return nil
		}
		if line == "" {
			continue
		}
		if quit := s.dispatch(ctx, line); quit {
			return nil
		}
	}
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) prompt(label string) (string, bool) {
	s.printf("%s: ", label)
	return s.readLine()
}

// loginGate blocks until a session exists. Returns false on EOF/quit.
func (s *Shell) loginGate(ctx context.Context) bool {
	s.printf("Not logged in. Commands: login, register, quit\n")
	for {
		s.printf("login> ")
		line, ok := s.readLine()
		if !ok {
			return false
		}
		switch line {
		case "login":
			username, ok := s.prompt("username")
			if !ok {
				return false
			}
			password, ok := s.prompt("password")
			if !ok {
				return false
			}
			if err := s.session.Login(ctx, username, password); err != nil {
				s.printf("Login failed: %v\n", err)
				continue
			}
			s.printf("Welcome, %s\n", s.session.User().Username)
			return true
		case "register":
			s.register(ctx)
		case "quit", "exit":
			return false
		case "":
		default:
			s.printf("Unknown command %q\n", line)
		}
	}
}

func (s *Shell) register(ctx context.Context) {
	username, ok := s.prompt("username")
	if !ok {
		return
	}
	email, ok := s.prompt("email")
	if !ok {
		return
	}
	password, ok := s.prompt("password")
	if !ok {
		return
	}
	if _, err := s.gw.Register(ctx, username, email, password); err != nil {
		s.printf("Registration failed: %v\n", err)
		return
	}
	s.printf("Registered. You can login now.\n")
}

func (s *Shell) dispatch(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		s.printf("%s", helpText)
	case "quit", "exit":
		return true
	case "logout":
		s.session.Logout()
		s.printf("Logged out.\n")
	case "list", "refresh":
		s.coord.Refresh()
	case "page":
		if n, err := argInt(args); err != nil {
			s.printf("usage: page N\n")
		} else {
			s.coord.SetPage(n)
		}
	case "next":
		snap := s.coord.Snapshot()
		if snap.TotalPages > 0 && snap.Page >= snap.TotalPages {
			s.printf("already at the last page\n")
		} else {
			s.coord.SetPage(snap.Page + 1)
		}
	case "prev":
		if p := s.coord.Snapshot().Page; p > 1 {
			s.coord.SetPage(p - 1)
		} else {
			s.printf("already at the first page\n")
		}
	case "perpage":
		n, err := argInt(args)
		if err != nil || !validPerPage(n) {
			s.printf("usage: perpage 5|10|20|50\n")
		} else {
			s.coord.SetPerPage(n)
		}
	case "status":
		status := model.OrderStatus(argString(args))
		if status != "" && !status.Valid() {
			s.printf("unknown status %q\n", status)
		} else {
			s.coord.SetStatus(status)
		}
	case "customer":
		s.coord.SetCustomerName(argString(args))
	case "new":
		s.createOrder(ctx)
	case "show":
		s.showOrder(ctx, args)
	case "setstatus":
		s.setOrderStatus(ctx, args)
	case "delete":
		s.deleteOrder(ctx, args)
	default:
		s.printf("Unknown command %q (try help)\n", cmd)
	}
	return false
}

func (s *Shell) createOrder(ctx context.Context) {
	draft := form.DefaultDraft()
	if v, ok := s.prompt("customer name"); ok {
		draft.CustomerName = v
	} else {
		return
	}
	if v, ok := s.prompt("product name"); ok {
		draft.ProductName = v
	} else {
		return
	}
	if v, ok := s.prompt("quantity"); ok {
		draft.Quantity, _ = strconv.Atoi(v)
	} else {
		return
	}
	if v, ok := s.prompt("unit price"); ok {
		draft.UnitPrice, _ = strconv.ParseFloat(v, 64)
	} else {
		return
	}

	s.form.SetDraft(draft)
	s.printf("Total: %.2f\n", s.form.PreviewTotal())

	s.form.Submit(ctx)
	if errMsg, successMsg := s.form.Messages(); errMsg != "" {
		s.printf("! %s\n", errMsg)
	} else {
		s.printf("%s\n", successMsg)
	}
}

func (s *Shell) showOrder(ctx context.Context, args []string) {
	id, err := argInt64(args)
	if err != nil {
		s.printf("usage: show ID\n")
		return
	}
	order, err := s.gw.GetOrder(ctx, id)
	if err != nil {
		s.printf("! %v\n", err)
		return
	}
	s.printf("#%d %s / %s  qty=%d  unit=%.2f  total=%.2f  status=%s\n",
		order.ID, order.CustomerName, order.ProductName,
		order.Quantity, order.UnitPrice, order.TotalAmount, order.Status.Label())
}

func (s *Shell) setOrderStatus(ctx context.Context, args []string) {
	if len(args) != 2 {
		s.printf("usage: setstatus ID STATUS\n")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		s.printf("usage: setstatus ID STATUS\n")
		return
	}
	status := model.OrderStatus(args[1])
	if !status.Valid() {
		s.printf("unknown status %q\n", status)
		return
	}
	if _, err := s.gw.UpdateOrderStatus(ctx, id, status); err != nil {
		s.printf("! %v\n", err)
		return
	}
	s.coord.Refresh()
}

func (s *Shell) deleteOrder(ctx context.Context, args []string) {
	id, err := argInt64(args)
	if err != nil {
		s.printf("usage: delete ID\n")
		return
	}
	if err := s.gw.DeleteOrder(ctx, id); err != nil {
		s.printf("! %v\n", err)
		return
	}
	s.coord.Refresh()
}

func validPerPage(n int) bool {
	switch n {
	case 5, 10, 20, 50:
		return true
	}
	return false
}

func argString(args []string) string {
	return strings.Join(args, " ")
}

func argInt(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one argument")
	}
	return strconv.Atoi(args[0])
}

func argInt64(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one argument")
	}
	return strconv.ParseInt(args[0], 10, 64)
}

const helpText = `commands:
  list | refresh        fetch orders under the current filter
  page N | next | prev  pagination
  perpage 5|10|20|50    page size (resets to page 1)
  status S              filter by status, empty clears (resets to page 1)
  customer NAME         filter by customer substring (resets to page 1)
  new                   create an order
  show ID               fetch one order
  setstatus ID STATUS   update an order's status
  delete ID             delete an order
  logout | quit
`
