package main

import (
	"os"
	"strconv"
	"strings"

	"waguard/splitter"
)

type ConfigStruct struct {
	OwnerName   string
	OwnerNumber string
	BotName     string
	Prefix      string
	DataDir     string
	TempDir     string
	MongoURI    string
	RedisAddr   string
	Port        string
	SizeLimit   int64
	PartDelay   int
}

var Config = ConfigStruct{
	OwnerName:   getEnv("OWNER_NAME", "Group Guard Team"),
	OwnerNumber: getEnv("OWNER_NUMBER", "923001234567"),
	BotName:     getEnv("BOT_NAME", "Group Guard"),
	Prefix:      getEnv("PREFIX", "#"),
	DataDir:     getEnv("DATA_DIR", "data"),
	TempDir:     getEnv("TEMP_DIR", "temp"),
	MongoURI:    getEnv("MONGO_URI", ""),
	RedisAddr:   getEnv("REDIS_ADDR", ""),
	Port:        getEnv("PORT", "8080"),
	SizeLimit:   getEnvInt64("SIZE_LIMIT", splitter.DefaultThreshold),
	PartDelay:   int(getEnvInt64("PART_DELAY_SECONDS", 2)),
}

// defaultBadWords seeds the filter; deployments extend it via BAD_WORDS.
var defaultBadWords = []string{
	"fuck", "shit", "bitch", "ass", "dick", "bastard",
	"whore", "cunt", "slut", "damn", "hell",
	"كلب", "حمار", "غبي",
}

func badWordList() []string {
	if raw := getEnv("BAD_WORDS", ""); raw != "" {
		var words []string
		for _, w := range strings.Split(raw, ",") {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		return words
	}
	return defaultBadWords
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
