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

	"messenger/pkg/chatclient"
	"messenger/pkg/logger"
)

// Терминальный клиент: логин, список собеседников, живая переписка.
//
//	/users          — список пользователей
//	/chat <id>      — открыть беседу (или свою же — "сохраненные")
//	/edit <id> <t>  — изменить сообщение
//	/delete <id>    — удалить сообщение
//	<текст>         — отправить сообщение
func main() {
	server := flag.String("server", "http://localhost:5001", "server base URL")
	email := flag.String("email", "", "email")
	password := flag.String("password", "", "password")
	username := flag.String("username", "", "username (register a new account when set)")
	flag.Parse()

	log := logger.New("warn")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := chatclient.NewAPI(*server)

	var err error
	if *username != "" {
		_, err = api.Register(ctx, *email, *username, *password)
	} else {
		_, err = api.Login(ctx, *email, *password)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "auth failed:", err)
		os.Exit(1)
	}

	me, err := api.VerifyToken(ctx, api.Token)
	if err != nil {
		fmt.Fprintln(os.Stderr, "verify failed:", err)
		os.Exit(1)
	}
	fmt.Printf("logged in as %s (id %d)\n", me.Username, me.ID)

	wsURL := strings.Replace(*server, "http", "ws", 1) + "/ws/chat"
	conn, err := chatclient.Dial(ctx, wsURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "websocket dial failed:", err)
		os.Exit(1)
	}
	defer conn.Close()

	session := chatclient.NewSession(me.ID, api, conn, log)
	session.OnUpdate(func() {
		render(session)
	})

	go func() {
		if err := conn.Listen(ctx, session.HandleFrame); err != nil && ctx.Err() == nil {
			fmt.Fprintln(os.Stderr, "connection lost:", err)
			os.Exit(1)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if err := handleLine(ctx, api, session, line); err != nil {
				if errors.Is(err, chatclient.ErrUnauthorized) {
					fmt.Fprintln(os.Stderr, "session expired, please log in again")
					os.Exit(1)
				}
				fmt.Fprintln(os.Stderr, "error:", err)
			}
		}
		fmt.Print("> ")
	}
}

func handleLine(ctx context.Context, api *chatclient.API, session *chatclient.Session, line string) error {
	switch {
	case line == "/users":
		users, err := api.Users(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("  %d\t%s\n", u.ID, u.Username)
		}
		return nil

	case strings.HasPrefix(line, "/chat "):
		id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "/chat ")), 10, 64)
		if err != nil {
			return fmt.Errorf("usage: /chat <user id>")
		}
		session.Select(ctx, id)
		return nil

	case strings.HasPrefix(line, "/edit "):
		parts := strings.SplitN(strings.TrimPrefix(line, "/edit "), " ", 2)
		if len(parts) != 2 {
			return fmt.Errorf("usage: /edit <message id> <text>")
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return fmt.Errorf("usage: /edit <message id> <text>")
		}
		_, err = session.Edit(ctx, id, parts[1])
		return err

	case strings.HasPrefix(line, "/delete "):
		id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "/delete ")), 10, 64)
		if err != nil {
			return fmt.Errorf("usage: /delete <message id>")
		}
		return session.Delete(ctx, id)

	default:
		if session.State() == chatclient.StateIdle {
			return fmt.Errorf("no conversation selected, use /chat <id>")
		}
		_, err := session.Send(ctx, line)
		return err
	}
}

func render(session *chatclient.Session) {
	fmt.Println()
	for _, msg := range session.Messages() {
		text := msg.Text
		if len(msg.ImagePaths) > 0 {
			text = fmt.Sprintf("[изображения: %s]", strings.Join(msg.ImagePaths, ", "))
		}
		fmt.Printf("  [%d] %s user %d: %s\n", msg.ID, msg.CreatedAt.Format("15:04"), msg.SenderID, text)
	}
	fmt.Print("> ")
}
