// Command inspect dumps the Badger store of a dialog-hub instance.
//
//	inspect dialogs
//	inspect unread -user 2
//	inspect messages -dialog 7 -since 10
//	inspect token -user 2 -ttl 1h
//	inspect revoke -token <jwt>
//	inspect presence -user 2
package main

import (
	"context"
	"dialog-hub/auth"
	"dialog-hub/domain"
	"dialog-hub/infrastructure/presence"
	"dialog-hub/internal"
	"dialog-hub/repositories"
	"dialog-hub/runtime"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		color.Error.Println(err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: inspect dialogs|unread|messages|token|revoke|presence [flags]")
	}
	_ = godotenv.Load()
	command := args[0]

	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	dbPath := flags.String("db", envOr("BADGER_FILEPATH", "./data/badger"), "Path to badger DB")
	user := flags.Int64("user", 0, "User id")
	dialog := flags.Int64("dialog", 0, "Dialog id")
	since := flags.Uint64("since", 0, "Only messages after this sequence")
	ttl := flags.Duration("ttl", time.Hour, "Token lifetime")
	token := flags.String("token", "", "Access token")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	ctx := context.Background()

	switch command {
	case "token":
		return issueToken(out, domain.UserID(*user), *ttl)
	case "presence":
		return showPresence(ctx, out, domain.UserID(*user))
	}

	db, err := openDB(*dbPath, command != "revoke")
	if err != nil {
		return fmt.Errorf("error while opening Badger: %w", err)
	}
	defer func() { _ = db.Close() }()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dialogs, err := repositories.NewDialogRepository(db, log)
	if err != nil {
		return err
	}
	defer func() { _ = dialogs.Close() }()
	messages := repositories.NewMessageRepository(db, log)

	switch command {
	case "dialogs":
		all, err := dialogs.AllDialogs(ctx)
		if err != nil {
			return err
		}
		table := newTable(out, "ID", "Participants", "Blocked by", "Hidden for", "Messages", "Created")
		for _, d := range all {
			last, err := messages.LastSequence(ctx, d.ID)
			if err != nil {
				return err
			}
			table.Append([]string{
				d.ID.String(),
				fmt.Sprintf("%d <-> %d", d.ParticipantA, d.ParticipantB),
				blockedBy(d),
				fmt.Sprint(d.DeletedFor),
				strconv.FormatUint(last, 10),
				d.CreatedAt.Format(time.RFC3339),
			})
		}
		table.Render()
		color.Info.Printf("%d dialogs\n", len(all))
	case "unread":
		unread := runtime.NewUnread(dialogs, messages)
		of, err := dialogs.DialogsOf(ctx, domain.UserID(*user))
		if err != nil {
			return err
		}
		table := newTable(out, "Dialog", "With", "Unread")
		for _, d := range of {
			count, err := unread.CountInDialog(ctx, domain.UserID(*user), d.ID)
			if err != nil {
				return err
			}
			table.Append([]string{d.ID.String(), fmt.Sprint(d.Other(domain.UserID(*user))), strconv.Itoa(count)})
		}
		table.Render()
		total, err := unread.Count(ctx, domain.UserID(*user))
		if err != nil {
			return err
		}
		color.Info.Printf("%d unread in total\n", total)
	case "messages":
		list, err := messages.ListSince(ctx, domain.DialogID(*dialog), *since)
		if err != nil {
			return err
		}
		table := newTable(out, "Seq", "Sender", "Body", "State", "Created")
		for _, m := range list {
			table.Append([]string{
				strconv.FormatUint(m.Sequence, 10),
				fmt.Sprint(m.SenderID),
				m.Body,
				internal.DescribeState(m),
				m.CreatedAt.Format(time.RFC3339),
			})
		}
		table.Render()
	case "revoke":
		id, err := auth.TokenID(*token)
		if err != nil {
			return err
		}
		if err = repositories.NewRevocationRepository(db).Revoke(ctx, id, *ttl); err != nil {
			return err
		}
		color.Success.Printf("revoked %s for %s\n", id, *ttl)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func issueToken(out io.Writer, user domain.UserID, ttl time.Duration) error {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	token, err := auth.GenerateToken(secret, user, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func showPresence(ctx context.Context, out io.Writer, user domain.UserID) error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return fmt.Errorf("REDIS_ADDR is not set")
	}
	client, err := presence.Dial(ctx, addr)
	if err != nil {
		return err
	}
	mirror := presence.NewRedisMirror(client, 0)
	defer func() { _ = mirror.Close() }()

	online, err := mirror.IsOnline(ctx, user)
	if err != nil {
		return err
	}
	seen, ok, err := mirror.LastSeen(ctx, user)
	if err != nil {
		return err
	}
	lastSeen := "-"
	if ok {
		lastSeen = seen.Format(time.RFC3339)
	}
	state := color.Red.Render("offline")
	if online {
		state = color.Green.Render("online")
	}
	table := newTable(out, "User", "State", "Last seen")
	table.Append([]string{fmt.Sprint(user), state, lastSeen})
	table.Render()
	return nil
}

// openDB bypasses the lock guard so a running server does not prevent inspection.
func openDB(path string, readOnly bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(readOnly).
		WithBypassLockGuard(readOnly).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(opts)
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func blockedBy(d domain.Dialog) string {
	if d.BlockedBy == nil {
		return "-"
	}
	return fmt.Sprint(*d.BlockedBy)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
