package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/papertrade/gopaper/internal/server"
	"github.com/papertrade/gopaper/pkg/secretstore"
)

// 管理 gopaper 的 badger 秘钥库：读写秘密、签发测试用 bearer token。
//
// Usage:
//   secret set <key> <value>
//   secret get <key>
//   secret del <key>
//   secret list [prefix]
//   secret token <user-id> [-ttl 24h]

func main() {
	var (
		dbPath    = flag.String("db", getenv("GOPAPER_SECRET_DB", "data/secrets"), "badger secrets db path")
		secretKey = flag.String("secret-key", getenv("GOPAPER_SECRETSTORE_KEY", ""), "badger encryption key (32 bytes hex/base64)")
		ttl       = flag.Duration("ttl", 24*time.Hour, "token validity (token command only)")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	keyBytes, err := secretstore.ParseKey(*secretKey)
	if err != nil {
		fatal(err)
	}

	readOnly := args[0] == "get" || args[0] == "list" || args[0] == "token"
	ss, err := secretstore.Open(secretstore.OpenOptions{
		Path:          *dbPath,
		EncryptionKey: keyBytes,
		ReadOnly:      readOnly,
	})
	if err != nil {
		fatal(err)
	}
	defer ss.Close()

	switch args[0] {
	case "set":
		if len(args) != 3 {
			usage()
		}
		if err := ss.SetString(args[1], args[2]); err != nil {
			fatal(err)
		}
	case "get":
		if len(args) != 2 {
			usage()
		}
		val, found, err := ss.GetString(args[1])
		if err != nil {
			fatal(err)
		}
		if !found {
			fatal(fmt.Errorf("key %q not found", args[1]))
		}
		fmt.Println(val)
	case "del":
		if len(args) != 2 {
			usage()
		}
		if err := ss.Delete(args[1]); err != nil {
			fatal(err)
		}
	case "list":
		prefix := ""
		if len(args) > 1 {
			prefix = args[1]
		}
		keys, err := ss.Keys(prefix)
		if err != nil {
			fatal(err)
		}
		for _, k := range keys {
			fmt.Println(k)
		}
	case "token":
		if len(args) != 2 {
			usage()
		}
		token, err := mintToken(ss, args[1], *ttl)
		if err != nil {
			fatal(err)
		}
		fmt.Println(token)
	default:
		usage()
	}
}

// mintToken signs a bearer token with the same secret the server uses, so
// tokens minted here are accepted directly.
func mintToken(ss *secretstore.Store, userID string, ttl time.Duration) (string, error) {
	secret := os.Getenv("GOPAPER_TOKEN_SECRET")
	if secret == "" {
		stored, found, err := ss.GetString("auth/token_secret")
		if err != nil {
			return "", err
		}
		if !found {
			return "", fmt.Errorf("no token secret: set GOPAPER_TOKEN_SECRET or start the server once")
		}
		secret = stored
	}
	return server.NewHMACTokenizer([]byte(secret), ttl).Issue(userID)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  secret [-db path] [-secret-key k] set <key> <value>
  secret [-db path] [-secret-key k] get <key>
  secret [-db path] [-secret-key k] del <key>
  secret [-db path] [-secret-key k] list [prefix]
  secret [-db path] [-secret-key k] [-ttl 24h] token <user-id>`)
	os.Exit(2)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
