package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// ErrUnauthorized — токен отвергнут сервером; вызывающая сторона должна
// сбросить сохраненный токен и вернуться к аутентификации.
var ErrUnauthorized = errors.New("unauthorized")

// Message — сообщение в представлении клиента. Поля зеркалят JSON сервера.
type Message struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	ImagePaths []string  `json:"imagePaths,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Principal struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type UserListItem struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Tokens struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// UploadFile — файл для отправки изображением.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// API — REST-клиент мессенджера.
type API struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *API) Register(ctx context.Context, email, username, password string) (*Tokens, error) {
	var tokens Tokens
	err := a.doJSON(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}, &tokens)
	if err != nil {
		return nil, err
	}
	a.Token = tokens.Token
	return &tokens, nil
}

func (a *API) Login(ctx context.Context, email, password string) (*Tokens, error) {
	var tokens Tokens
	err := a.doJSON(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &tokens)
	if err != nil {
		return nil, err
	}
	a.Token = tokens.Token
	return &tokens, nil
}

func (a *API) VerifyToken(ctx context.Context, token string) (*Principal, error) {
	var principal Principal
	err := a.doJSON(ctx, http.MethodPost, "/api/auth/verifyToken", map[string]string{
		"token": token,
	}, &principal)
	if err != nil {
		return nil, err
	}
	return &principal, nil
}

func (a *API) Users(ctx context.Context) ([]UserListItem, error) {
	var users []UserListItem
	if err := a.doJSON(ctx, http.MethodGet, "/api/users/allUsers", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *API) Messages(ctx context.Context, senderID, receiverID int64) ([]Message, error) {
	path := fmt.Sprintf("/api/messages/%d/%d", senderID, receiverID)
	var messages []Message
	if err := a.doJSON(ctx, http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (a *API) SendMessage(ctx context.Context, senderID, receiverID int64, text string) (*Message, error) {
	var message Message
	err := a.doJSON(ctx, http.MethodPost, "/api/messages", map[string]any{
		"senderId":   senderID,
		"receiverId": receiverID,
		"text":       text,
	}, &message)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (a *API) EditMessage(ctx context.Context, id int64, text string) (*Message, error) {
	// Сервер отвечает {message: <status>, data: <Message>}
	var resp struct {
		Message string  `json:"message"`
		Data    Message `json:"data"`
	}
	path := "/api/messages/edit/" + strconv.FormatInt(id, 10)
	err := a.doJSON(ctx, http.MethodPost, path, map[string]string{"text": text}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (a *API) DeleteMessage(ctx context.Context, id int64) error {
	path := "/api/messages/delete/" + strconv.FormatInt(id, 10)
	return a.doJSON(ctx, http.MethodPost, path, nil, nil)
}

func (a *API) UploadImages(ctx context.Context, senderID, receiverID int64, files []UploadFile) (*Message, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("senderId", strconv.FormatInt(senderID, 10))
	_ = writer.WriteField("receiverId", strconv.FormatInt(receiverID, 10))
	for _, file := range files {
		part, err := writer.CreateFormFile("image", file.Name)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/api/messages/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var message Message
	if err := a.do(req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

func (a *API) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return a.do(req, out)
}

func (a *API) do(req *http.Request, out any) error {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
