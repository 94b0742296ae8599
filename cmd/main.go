package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gochat/internal/common"
	"gochat/internal/wire"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	log.Println("Initializing application...")
	app, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	router := setupRouter(app)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", app.Config.Server.Host, app.Config.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(app.Config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if app.Mongo != nil {
		app.Mongo.Close(ctx)
	}

	log.Println("Server gracefully stopped")
}

// setupRouter configures HTTP routes
func setupRouter(app *wire.Application) *mux.Router {
	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)

	// websocket and media live outside the JSON API
	router.HandleFunc("/ws", app.RealtimeHandler.ServeWS)
	app.MediaServer.Register(router)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// public routes
	api.HandleFunc("/users", app.UserHandler.CreateUser).Methods("POST")
	api.HandleFunc("/auth/login", app.UserHandler.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", app.UserHandler.RefreshToken).Methods("POST")

	// everything below needs a valid access token
	authed := api.NewRoute().Subrouter()
	authed.Use(common.AuthMiddleware)

	authed.HandleFunc("/auth/logout", app.UserHandler.Logout).Methods("POST")
	authed.HandleFunc("/users/me", app.UserHandler.GetUser).Methods("GET")
	authed.HandleFunc("/users/me/password", app.UserHandler.ChangePassword).Methods("PUT")
	authed.HandleFunc("/users/me/profile", app.UserHandler.EditProfile).Methods("PUT")
	authed.HandleFunc("/users/block", app.UserHandler.BlockUser).Methods("POST")
	authed.HandleFunc("/users/unblock", app.UserHandler.UnblockUser).Methods("POST")

	authed.HandleFunc("/contacts", app.UserHandler.GetContacts).Methods("GET")
	authed.HandleFunc("/contacts", app.UserHandler.AddContact).Methods("POST")
	authed.HandleFunc("/contacts", app.UserHandler.EditContact).Methods("PUT")
	authed.HandleFunc("/contacts", app.UserHandler.DeleteContact).Methods("DELETE")

	authed.HandleFunc("/chats", app.ChatHandler.GetUserChats).Methods("GET")
	authed.HandleFunc("/chats", app.ChatHandler.CreateChat).Methods("POST")
	authed.HandleFunc("/chats/{chatId}", app.ChatHandler.EditChat).Methods("PUT")
	authed.HandleFunc("/chats/{chatId}/members", app.ChatHandler.AddUsersToChat).Methods("POST")
	authed.HandleFunc("/chats/{chatId}/members/{userId}", app.ChatHandler.DeleteUserFromChat).Methods("DELETE")
	authed.HandleFunc("/chats/{chatId}/messages", app.ChatHandler.GetChatMessages).Methods("GET")
	authed.HandleFunc("/chats/{chatId}/media", app.ChatHandler.GetChatMedia).Methods("GET")
	authed.HandleFunc("/chats/{chatId}/seen", app.ChatHandler.MarkMessageAsSeen).Methods("POST")
	authed.HandleFunc("/messages", app.ChatHandler.SendMessage).Methods("POST")
	authed.HandleFunc("/messages/{messageId}/info", app.ChatHandler.GetMessageInfo).Methods("GET")

	return router
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"gochat"}`))
}
