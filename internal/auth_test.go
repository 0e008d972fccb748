package internal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/chatpane/testutil"
)

func TestAuthClient_Login(t *testing.T) {
	tests := []struct {
		name      string
		reply     testutil.ReplyFunc
		wantEmail string
		wantErr   string
	}{
		{
			name:      "success",
			reply:     testutil.Status(http.StatusOK, `{"status":"success","user":{"name":"Ada","email":"ada@example.com"}}`),
			wantEmail: "ada@example.com",
		},
		{
			name:    "rejected with message",
			reply:   testutil.Status(http.StatusOK, `{"status":"error","error":"Wrong password"}`),
			wantErr: "Wrong password",
		},
		{
			name:    "rejected without message",
			reply:   testutil.Status(http.StatusOK, `{"status":"error"}`),
			wantErr: "Invalid credentials",
		},
		{
			name:    "non-2xx uses detail",
			reply:   testutil.Status(http.StatusUnauthorized, `{"detail":"User not found"}`),
			wantErr: "User not found",
		},
		{
			name:    "non-2xx without body",
			reply:   testutil.Status(http.StatusBadGateway, ``),
			wantErr: "Login failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewFakeEndpoint(t, tt.reply)
			client := NewAuthClient(server.URL, 5*time.Second)

			user, err := client.Login(context.Background(), "ada@example.com", "secret")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Login() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if user.Email != tt.wantEmail {
				t.Errorf("Login() email = %q, want %q", user.Email, tt.wantEmail)
			}

			rec := server.Requests()[0]
			if rec.Path != "/login" || rec.Fields["email"] != "ada@example.com" || rec.Fields["password"] != "secret" {
				t.Errorf("request = %+v", rec)
			}
		})
	}
}

func TestAuthClient_Signup(t *testing.T) {
	server := testutil.NewFakeEndpoint(t, testutil.Status(http.StatusOK,
		`{"status":"success","user":{"name":"Ada","email":"ada@example.com","profile_pic":"/pics/ada.png"}}`))
	client := NewAuthClient(server.URL, 5*time.Second)
	pic := testutil.WriteTempFile(t, "ada.png", []byte("png-bytes"))

	user, err := client.Signup(context.Background(), SignupRequest{
		Name:           "Ada",
		Email:          "ada@example.com",
		Password:       "secret",
		ProfilePicPath: pic,
	})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user.ProfilePic != "/pics/ada.png" {
		t.Errorf("Signup() profile pic = %q", user.ProfilePic)
	}

	rec := server.Requests()[0]
	if rec.Path != "/signup" || !strings.HasPrefix(rec.ContentType, "multipart/form-data") {
		t.Errorf("request = %s %s, want multipart /signup", rec.Path, rec.ContentType)
	}
	if rec.Fields["name"] != "Ada" || rec.Fields["email"] != "ada@example.com" || rec.Fields["password"] != "secret" {
		t.Errorf("form fields = %v", rec.Fields)
	}
	if rec.FileName != "ada.png" || string(rec.FileData) != "png-bytes" {
		t.Errorf("profile picture = %q (%q)", rec.FileName, rec.FileData)
	}
}

func TestAuthClient_SignupFailure(t *testing.T) {
	server := testutil.NewFakeEndpoint(t, testutil.Status(http.StatusOK, `{"status":"error"}`))
	_, err := NewAuthClient(server.URL, time.Second).Signup(context.Background(), SignupRequest{Email: "a@b.c"})
	if err == nil || err.Error() != "Failed to create account" {
		t.Errorf("Signup() error = %v, want fallback message", err)
	}
}

func TestAuthClient_ForgotPassword(t *testing.T) {
	tests := []struct {
		name    string
		reply   testutil.ReplyFunc
		want    string
		wantErr string
	}{
		{
			name:  "backend message",
			reply: testutil.Status(http.StatusOK, `{"status":"success","message":"Password changed"}`),
			want:  "Password changed",
		},
		{
			name:  "default message",
			reply: testutil.Status(http.StatusOK, `{"status":"success"}`),
			want:  "Password updated successfully. Please log in.",
		},
		{
			name:    "not found detail",
			reply:   testutil.Status(http.StatusNotFound, `{"detail":"Email not registered"}`),
			wantErr: "Email not registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewFakeEndpoint(t, tt.reply)
			got, err := NewAuthClient(server.URL, time.Second).ForgotPassword(context.Background(), "ada@example.com", "n3w")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ForgotPassword() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForgotPassword() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ForgotPassword() = %q, want %q", got, tt.want)
			}
			if rec := server.Requests()[0]; rec.Fields["newPassword"] != "n3w" {
				t.Errorf("newPassword field = %q", rec.Fields["newPassword"])
			}
		})
	}
}

func TestAuthClient_Timeout(t *testing.T) {
	server := testutil.NewFakeEndpoint(t, func(testutil.RecordedRequest) (int, string) {
		time.Sleep(300 * time.Millisecond)
		return http.StatusOK, `{"status":"success"}`
	})
	_, err := NewAuthClient(server.URL, 50*time.Millisecond).ForgotPassword(context.Background(), "a@b.c", "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ForgotPassword() error = %v, want deadline exceeded", err)
	}
}

func TestAuthStore(t *testing.T) {
	slot := NewMemorySlot()
	store := NewAuthStore(slot)

	if _, ok := store.Current(); ok {
		t.Error("Current() should report nobody logged in initially")
	}

	if err := store.Save(&User{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	user, ok := store.Current()
	if !ok || user.Email != "ada@example.com" {
		t.Errorf("Current() = %+v, %v, want ada", user, ok)
	}

	if err := store.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := store.Current(); ok {
		t.Error("Current() after Logout() should report nobody logged in")
	}
}

func TestAuthStore_MalformedRecord(t *testing.T) {
	for _, data := range []string{"not json", `{"name":"no email"}`} {
		slot := NewMemorySlot()
		_ = slot.Write(UserKey, []byte(data))
		if _, ok := NewAuthStore(slot).Current(); ok {
			t.Errorf("Current() with %q should report nobody logged in", data)
		}
	}
}
