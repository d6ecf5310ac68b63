// internal/words/words.go
// Package words provides network-technology themed vocabulary for the game.
package words

import (
	"math/rand"
	"time"

	"github.com/woohung/morse-game/internal/model"
)

const (
	// MaxEasyWordLen caps easy-mode word length
	MaxEasyWordLen = 4
	// MaxHardWordLen caps hard-mode word length
	MaxHardWordLen = 6

	// maxUsedWords is the exclusion window before trimming kicks in
	maxUsedWords = 20
	// trimUsedWords is how many recent words survive a trim
	trimUsedWords = 10
)

// easyWords holds the simpler terms, max four letters.
var easyWords = []string{
	"WIFI", "LAN", "WAN", "VPN", "DNS", "FTP", "HTTP", "TCP",
	"UDP", "IP", "MAC", "PING", "PORT", "HOST", "NODE", "LINK",
	"DATA", "PACK", "BYTE", "BITS", "MODE", "SYNC", "AUTH",
	"KEY", "API", "WEB", "MAIL", "CHAT", "CALL", "SAFE", "LOCK",
	"PASS", "USER", "ROOT", "LOAD", "FAST", "SLOW", "HIGH",
	"LOW", "LOSS", "FAIL", "DISK", "SIZE", "FREE", "USED",
	"HELP", "INFO", "NOTE", "WARN", "OK", "YES", "NO", "NEW",
	"OLD", "HOT", "ON", "OFF",
	"HUB", "FIRE", "WALL", "GATE", "WIRE", "CHIP", "CARD",
	"SLOT", "RACK", "CASE", "FAN", "LED",
	"SSH", "TEL", "RDP", "VNC", "SFTP", "LIVE", "REAL", "TIME",
	"WORD", "SIGN", "OUT", "EXIT", "PERM", "ROLE", "TEAM", "WORK",
	"AI", "ML", "IOT", "AR", "VR", "UX", "UI", "QA", "CI",
	"CD", "DEV", "OPS", "IT", "HR", "CEO", "CTO", "CFO",
	"FAQ", "STOP", "RUN", "END", "QUIT",
}

// hardWords holds the more complex IT terms, max six letters.
var hardWords = []string{
	"HTTPS", "SMTP", "POP3", "IMAP", "SOAP", "JSON", "XML",
	"CODE", "TEST", "DEMO", "SWITCH", "BRIDGE", "MODEM",
	"RADIO", "FIBER", "COPPER", "MOUSE", "SCREEN", "TOUCH",
	"DOCKER", "KUBE", "POD", "SCALE", "HEALTH", "CHECK",
	"TRACE", "DEBUG", "BUILD", "DEPLOY", "PUSH", "PULL",
	"MERGE", "BRANCH", "TAG", "PATCH", "UPDATE",
	"SPEED", "DELAY", "JITTER", "RETRY", "BACKUP", "MEMORY",
	"SPACE", "TOTAL", "SIGNAL", "WAVE",
	"TOKEN", "HASH", "CERT", "CLOUD", "EDGE", "CORE", "BACK",
	"FRONT", "ACCESS", "REMOVE", "CREATE", "DELETE", "MODIFY",
	"SERVER", "CLIENT", "SYSTEM", "SCRIPT", "CONFIG", "STATUS",
	"ACTIVE", "STATIC", "PUBLIC", "BINARY", "FORMAT", "EXPAND",
	"IMPORT", "EXPORT", "STREAM", "UPLOAD", "ONLINE", "REMOTE",
	"LOCAL", "GLOBAL", "REGION", "ZONE", "WORKER", "MASTER",
	"SECOND",
}

// Generator picks random words for the current difficulty without repeating
// any of the recently used ones. Not safe for concurrent use; it is owned by
// the game session.
type Generator struct {
	rng        *rand.Rand
	difficulty model.Difficulty
	used       []string
}

// NewGenerator creates a generator. A nil rng gets a time-seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		rng:        rng,
		difficulty: model.Easy,
	}
}

// SetDifficulty selects the word pool and resets the exclusion list.
func (g *Generator) SetDifficulty(d model.Difficulty) {
	if !d.Valid() {
		return
	}
	g.difficulty = d
	g.used = g.used[:0]
}

// Next returns a random word not in the recent-exclusion list. Once every
// word has been used the exclusion list resets. The list is trimmed to the
// most recent entries once it grows past the window.
func (g *Generator) Next() string {
	pool := g.pool()

	available := make([]string, 0, len(pool))
	for _, w := range pool {
		if !g.wasUsed(w) {
			available = append(available, w)
		}
	}
	if len(available) == 0 {
		g.used = g.used[:0]
		available = pool
	}

	word := available[g.rng.Intn(len(available))]
	g.used = append(g.used, word)
	if len(g.used) > maxUsedWords {
		g.used = append(g.used[:0], g.used[len(g.used)-trimUsedWords:]...)
	}
	return word
}

// Count returns the pool size for the current difficulty.
func (g *Generator) Count() int {
	return len(g.pool())
}

// Reset clears the exclusion list for a new game.
func (g *Generator) Reset() {
	g.used = g.used[:0]
}

func (g *Generator) pool() []string {
	if g.difficulty == model.Hard {
		return hardWords
	}
	return easyWords
}

func (g *Generator) wasUsed(word string) bool {
	for _, u := range g.used {
		if u == word {
			return true
		}
	}
	return false
}
