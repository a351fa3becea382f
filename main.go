package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.mau.fi/whatsmeow"
	waStore "go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"waguard/splitter"
	"waguard/store"
)

var (
	client    *whatsmeow.Client
	container *sqlstore.Container
	rdb       *redis.Client
	startTime = time.Now()

	groups      *store.Groups
	blocklist   *store.Blocklist
	users       *store.Users
	downloads   *store.Downloads
	warnings    *store.Warnings
	antiPrivate *store.AntiPrivate

	split *splitter.Splitter
)

// Each deployment keeps its own device row in the session store.
const BOT_TAG = "GROUP_GUARD_BOT"

func main() {
	fmt.Printf("🚀 [System] %s: Starting...\n", Config.BotName)

	backend, err := openBackend()
	if err != nil {
		panic(err)
	}
	groups = store.NewGroups(backend)
	blocklist = store.NewBlocklist(backend)
	users = store.NewUsers(backend)
	downloads = store.NewDownloads(backend)
	warnings = store.NewWarnings(backend)
	antiPrivate = store.NewAntiPrivate(backend)

	split = splitter.New(Config.TempDir, Config.SizeLimit,
		&splitter.Aria2Fetcher{Log: waLog.Stdout("Fetch", "INFO", true)},
		waLog.Stdout("Split", "INFO", true))

	if Config.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: Config.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			fmt.Printf("⚠️ [Redis] Unreachable, AI memory disabled: %v\n", err)
			rdb = nil
		}
	}

	dbURL := os.Getenv("DATABASE_URL")
	dbType := "postgres"
	if dbURL == "" {
		dbType = "sqlite3"
		dbURL = "file:guard.db?_foreign_keys=on"
	}

	container, err = sqlstore.New(context.Background(), dbType, dbURL, waLog.Stdout("Database", "INFO", true))
	if err != nil {
		panic(err)
	}

	var targetDevice *waStore.Device
	devices, _ := container.GetAllDevices(context.Background())
	for _, dev := range devices {
		if dev.PushName == BOT_TAG {
			targetDevice = dev
			break
		}
	}

	if targetDevice == nil {
		fmt.Println("ℹ️ [Auth] Bot is IDLE. Waiting for login from Web Dashboard.")
		targetDevice = container.NewDevice()
		targetDevice.PushName = BOT_TAG
	}

	client = whatsmeow.NewClient(targetDevice, waLog.Stdout("Client", "INFO", true))
	client.AddEventHandler(eventHandler)

	if client.Store.ID != nil {
		fmt.Printf("✅ [Status] Logged in as: %s\n", client.Store.ID.User)
		client.Connect()
	}

	go startScheduler()

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.StaticFile("/", "./web/index.html")
	r.POST("/api/pair", handlePairAPI)
	r.GET("/api/stats", handleStatsAPI)
	go r.Run(":" + Config.Port)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	client.Disconnect()
}

// openBackend picks MongoDB when MONGO_URI is set, local JSON files
// otherwise.
func openBackend() (store.Backend, error) {
	if Config.MongoURI == "" {
		return store.NewFileBackend(Config.DataDir)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(Config.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	fmt.Println("✅ [Mongo] Connected")
	return store.NewMongoBackend(mc.Database("guard").Collection("state")), nil
}

func eventHandler(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		go processMessage(client, v)
	case *events.GroupInfo:
		go processGroupInfo(client, v)
	}
}
