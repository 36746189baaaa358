package config

import "time"

type Settings struct {
	Server   Server
	Database Database
	Client   Client

	// Capacity of each notification channel between the listener and the
	// engine loop.
	NotifyBuffer int

	// Lines kept in the activity log ring.
	ActivityLines int

	// Longest accepted message line; anything beyond is truncated.
	MaxLineBytes int
}

type Server struct {
	BindHost string
	Port     int
}

type Database struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

type Client struct {
	Timeout time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Server: Server{
			BindHost: "0.0.0.0",
			Port:     3005,
		},
		Database: Database{
			Host:    "localhost",
			Port:    5432,
			Name:    "courier",
			User:    "courier",
			SSLMode: "disable",
		},
		Client: Client{
			Timeout: 5 * time.Second,
		},
		NotifyBuffer:  256,
		ActivityLines: 500,
		MaxLineBytes:  65536,
	}
}
