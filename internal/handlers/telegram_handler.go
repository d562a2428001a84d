package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"muhasebe-backend/internal/common"
	"muhasebe-backend/internal/repository"
	"muhasebe-backend/internal/services/documents"
	"muhasebe-backend/internal/telegram"
)

const startGreeting = "Merhaba! Fiş veya fatura fotoğrafı gönderin, kaydını çıkarayım. " +
	"Onayladığınız belgeler deftere işlenir."

// TelegramHandler receives bot webhook updates: photos become drafts through
// the OCR pipeline and inline buttons confirm or cancel them.
type TelegramHandler struct {
	bot       *telegram.Bot
	service   *documents.Service
	users     *repository.UserRepository
	dedupe    *telegram.DedupeCache
	secret    string
	uploadDir string
}

func NewTelegramHandler(bot *telegram.Bot, service *documents.Service, users *repository.UserRepository, secret, uploadDir string) *TelegramHandler {
	return &TelegramHandler{
		bot:       bot,
		service:   service,
		users:     users,
		dedupe:    telegram.NewDedupeCache(0),
		secret:    secret,
		uploadDir: uploadDir,
	}
}

// Webhook always answers 200 once the update is authenticated; Telegram
// retries anything else and the dedupe cache exists to absorb those retries.
func (h *TelegramHandler) Webhook(c *gin.Context) {
	if h.secret != "" && c.GetHeader("X-Telegram-Bot-Api-Secret-Token") != h.secret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	if h.dedupe.Seen(update.UpdateID) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	switch {
	case update.Message != nil:
		h.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		h.handleCallback(update.CallbackQuery)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *TelegramHandler) handleMessage(msg *telegram.Message) {
	if msg.From == nil {
		return
	}

	user, err := h.users.GetOrCreateByTelegramID(strconv.FormatInt(msg.From.ID, 10), telegramName(msg.From))
	if err != nil {
		log.Printf("telegram user lookup failed: %v", err)
		return
	}

	switch {
	case strings.HasPrefix(msg.Text, "/start"):
		h.reply(msg.Chat.ID, startGreeting, nil)
	case len(msg.Photo) > 0:
		// Telegram orders photo sizes ascending; the last is the original.
		h.processReceipt(user.ID, msg.Chat.ID, msg.Photo[len(msg.Photo)-1].FileID, ".jpg")
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		h.processReceipt(user.ID, msg.Chat.ID, msg.Document.FileID, filepath.Ext(msg.Document.FileName))
	case msg.Text != "":
		h.reply(msg.Chat.ID, "Kaydetmek için bir fiş fotoğrafı gönderin.", nil)
	}
}

func (h *TelegramHandler) processReceipt(userID uuid.UUID, chatID int64, fileID, ext string) {
	content, err := h.bot.DownloadFile(fileID)
	if err != nil {
		log.Printf("telegram file download failed: %v", err)
		h.reply(chatID, "Dosya indirilemedi, lütfen tekrar deneyin.", nil)
		return
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	if ext == "" {
		ext = ".jpg"
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		log.Printf("upload dir: %v", err)
		h.reply(chatID, "Belge işlenemedi, lütfen tekrar deneyin.", nil)
		return
	}
	path := filepath.Join(h.uploadDir, hash+ext)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		log.Printf("save upload: %v", err)
		h.reply(chatID, "Belge işlenemedi, lütfen tekrar deneyin.", nil)
		return
	}

	draft, err := h.service.ProcessImage(userID, path, hash)
	if err != nil {
		log.Printf("pipeline failed for %s: %v", path, err)
		h.reply(chatID, "Belge okunamadı. Daha net bir fotoğraf deneyebilirsiniz.", nil)
		return
	}

	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "✅ Onayla", CallbackData: "confirm:" + draft.DocumentID.String()},
			{Text: "❌ İptal", CallbackData: "cancel:" + draft.DocumentID.String()},
		}},
	}
	h.reply(chatID, formatDraft(draft), markup)
}

func (h *TelegramHandler) handleCallback(cb *telegram.CallbackQuery) {
	action, docID, ok := parseCallback(cb.Data)
	if !ok {
		h.answer(cb.ID, "Geçersiz işlem.")
		return
	}

	user, err := h.users.GetOrCreateByTelegramID(strconv.FormatInt(cb.From.ID, 10), telegramName(&cb.From))
	if err != nil {
		log.Printf("telegram user lookup failed: %v", err)
		h.answer(cb.ID, "İşlem başarısız.")
		return
	}

	var text string
	switch action {
	case "confirm":
		doc, err := h.service.Confirm(user.ID, docID, documents.Overrides{})
		if err != nil {
			h.answer(cb.ID, confirmFailureText(err))
			return
		}
		text = fmt.Sprintf("✅ Belge onaylandı ve deftere işlendi: %s %s",
			doc.TotalGross.StringFixed(2), doc.Currency)
	case "cancel":
		if _, err := h.service.Cancel(user.ID, docID); err != nil {
			h.answer(cb.ID, confirmFailureText(err))
			return
		}
		text = "❌ Belge iptal edildi."
	}

	h.answer(cb.ID, "")
	if cb.Message != nil {
		if err := h.bot.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text); err != nil {
			log.Printf("telegram edit failed: %v", err)
		}
	}
}

func confirmFailureText(err error) string {
	var stateErr *documents.StateError
	switch {
	case errors.As(err, &stateErr), errors.Is(err, documents.ErrLedgerExists):
		return "Bu belge zaten işlenmiş."
	case errors.Is(err, documents.ErrMissingAmount):
		return "Tutar okunamadı, lütfen uygulamadan düzenleyin."
	case errors.Is(err, common.ErrNotFound):
		return "Belge bulunamadı."
	default:
		return "İşlem başarısız, lütfen tekrar deneyin."
	}
}

func parseCallback(data string) (action string, docID uuid.UUID, ok bool) {
	action, raw, found := strings.Cut(data, ":")
	if !found || (action != "confirm" && action != "cancel") {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", uuid.Nil, false
	}
	return action, id, true
}

func formatDraft(draft *documents.Draft) string {
	var b strings.Builder
	b.WriteString("<b>Belge okundu</b>\n")

	if draft.VendorName != nil {
		b.WriteString("🏪 " + *draft.VendorName)
		if draft.IsNewVendor {
			b.WriteString(" (yeni)")
		}
		b.WriteString("\n")
	}
	if draft.DocDate != nil {
		b.WriteString("📅 " + draft.DocDate.Format("02.01.2006") + "\n")
	}
	if draft.TotalGross != nil {
		b.WriteString(fmt.Sprintf("💰 %s %s\n", draft.TotalGross.StringFixed(2), draft.Currency))
	}
	if draft.TotalTax != nil {
		b.WriteString(fmt.Sprintf("🧾 KDV %s %s\n", draft.TotalTax.StringFixed(2), draft.Currency))
	}
	b.WriteString(fmt.Sprintf("Güven: %.0f/100", draft.Confidence))
	return b.String()
}

func telegramName(u *telegram.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}

func (h *TelegramHandler) reply(chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if err := h.bot.SendMessage(chatID, text, markup); err != nil {
		log.Printf("telegram send failed: %v", err)
	}
}

func (h *TelegramHandler) answer(callbackID, text string) {
	if err := h.bot.AnswerCallbackQuery(callbackID, text); err != nil {
		log.Printf("telegram callback answer failed: %v", err)
	}
}
