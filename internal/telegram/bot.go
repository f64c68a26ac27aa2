package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"habit-coach/internal/app"
	"habit-coach/internal/coach"
	"habit-coach/internal/config"
	"habit-coach/internal/habit"
	"habit-coach/internal/metrics"
	"habit-coach/internal/session"
	"habit-coach/internal/weather"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatState is one chat's pending check-in input plus its session. Webhook
// requests run on separate goroutines, so every access to the mutable fields
// goes through the mutex; handlers take a snapshot and work on the copy.
type chatState struct {
	session *session.Session

	mu        sync.Mutex
	checked   map[string]bool
	mood      int
	cityLabel string
	cityQuery string
	style     coach.Style
}

// checkInView is an immutable copy of the pending check-in input.
type checkInView struct {
	checked   map[string]bool
	mood      int
	cityLabel string
	cityQuery string
	style     coach.Style
}

// snapshot copies the pending input, including the checked map, so callers
// can read or hand it off without holding the lock.
func (st *chatState) snapshot() checkInView {
	st.mu.Lock()
	defer st.mu.Unlock()
	checked := make(map[string]bool, len(st.checked))
	for name, on := range st.checked {
		checked[name] = on
	}
	return checkInView{
		checked:   checked,
		mood:      st.mood,
		cityLabel: st.cityLabel,
		cityQuery: st.cityQuery,
		style:     st.style,
	}
}

// toggleHabit flips one habit and returns the updated snapshot.
func (st *chatState) toggleHabit(name string) checkInView {
	st.mu.Lock()
	st.checked[name] = !st.checked[name]
	st.mu.Unlock()
	return st.snapshot()
}

func (st *chatState) setMood(mood int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.mood = mood
}

func (st *chatState) setCity(label, query string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cityLabel = label
	st.cityQuery = query
}

func (st *chatState) setStyle(style coach.Style) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.style = style
}

func (v checkInView) toCheckIn() app.CheckIn {
	return app.CheckIn{
		Checked:   v.checked,
		Mood:      v.mood,
		CityLabel: v.cityLabel,
		CityQuery: v.cityQuery,
		Style:     v.style,
	}
}

// Bot wraps the Telegram API and the habit-coach application.
type Bot struct {
	api          *tgbotapi.BotAPI
	app          *app.App
	metricsStore *metrics.Store
	cfg          *config.Config

	mu     sync.Mutex
	states map[int64]*chatState
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App, metricsStore *metrics.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          api,
		app:          application,
		metricsStore: metricsStore,
		cfg:          cfg,
		states:       make(map[int64]*chatState),
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.CallbackQuery != nil {
		if b.isAllowed(update.CallbackQuery.From.ID) {
			b.handleCallbackQuery(update.CallbackQuery)
		}
		return
	}

	if update.Message == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(userID int64) bool {
	for _, id := range b.cfg.TelegramAllowUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

// state returns (creating if needed) the chat's state.
func (b *Bot) state(chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[chatID]
	if !ok {
		cityLabel := b.cfg.DefaultCity
		cityQuery, found := weather.QueryFor(cityLabel)
		if !found {
			cityLabel = weather.Cities[0].Label
			cityQuery = weather.Cities[0].Query
		}
		st = &chatState{
			session:   session.New(time.Now()),
			checked:   make(map[string]bool),
			mood:      6,
			cityLabel: cityLabel,
			cityQuery: cityQuery,
			style:     coach.StyleWarmMentor,
		}
		b.states[chatID] = st
	}
	return st
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	cmd, arg := splitCommand(msg.Text)

	switch cmd {
	case "/start", "/help":
		b.sendHelp(msg.Chat.ID)
	case "/habits":
		b.sendHabitKeyboard(msg.Chat.ID)
	case "/mood":
		b.handleMood(msg.Chat.ID, arg)
	case "/city":
		b.handleCity(msg.Chat.ID, arg)
	case "/style":
		b.sendStyleKeyboard(msg.Chat.ID)
	case "/music":
		b.handleMusicRequest(msg.Chat.ID)
	case "/report":
		b.handleReportRequest(msg.Chat.ID)
	case "/share":
		b.handleShare(msg.Chat.ID)
	case "/publish":
		b.handlePublish(msg.Chat.ID)
	case "/history":
		b.handleHistory(msg.Chat.ID)
	case "/metrics":
		b.handleMetricsRequest(msg)
	case "/reset":
		b.state(msg.Chat.ID).session.Clear()
		b.send(msg.Chat.ID, "🧹 세션을 초기화했어요.")
	default:
		b.send(msg.Chat.ID, "모르는 명령이에요. /help 를 입력해 보세요.")
	}
}

func splitCommand(text string) (string, string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	return cmd, strings.TrimSpace(arg)
}

func (b *Bot) sendHelp(chatID int64) {
	var sb strings.Builder
	sb.WriteString("📊 *AI 습관 트래커*\n\n")
	sb.WriteString("/habits — 오늘의 습관 체크\n")
	sb.WriteString("/mood <1-10> — 오늘 기분 기록\n")
	sb.WriteString("/city <도시> — 도시 선택\n")
	sb.WriteString("/style — 코치 스타일 선택\n")
	sb.WriteString("/music — 기분 맞춤 음악 추천\n")
	sb.WriteString("/report — AI 코치 리포트 생성\n")
	sb.WriteString("/share — 최근 공유 텍스트 다시 보기\n")
	sb.WriteString("/publish — 최근 리포트를 블로그에 발행\n")
	sb.WriteString("/history — 최근 달성률 히스토리\n")
	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) sendHabitKeyboard(chatID int64) {
	view := b.state(chatID).snapshot()

	msg := tgbotapi.NewMessage(chatID, habitSummary(view))
	msg.ReplyMarkup = habitKeyboard(view)
	b.api.Send(msg)
}

func habitKeyboard(view checkInView) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, def := range habit.Defaults {
		mark := "⬜"
		if view.checked[def.Name] {
			mark = "✅"
		}
		label := fmt.Sprintf("%s %s %s", mark, def.Symbol, def.Name)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "habit|"+strconv.Itoa(i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func habitSummary(view checkInView) string {
	achieved := habit.CountCompleted(view.checked)
	rate := habit.ComputeRate(achieved, len(habit.Defaults))
	return fmt.Sprintf("✅ 오늘의 습관 체크인\n달성률 %.1f%% (%d/%d) · 기분 %d/10",
		rate, achieved, len(habit.Defaults), view.mood)
}

func (b *Bot) sendStyleKeyboard(chatID int64) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, style := range coach.Styles {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(string(style), "style|"+string(style)),
		))
	}
	msg := tgbotapi.NewMessage(chatID, "🎭 코치 스타일을 골라주세요.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.api.Send(msg)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	action, data, _ := strings.Cut(query.Data, "|")
	chatID := query.Message.Chat.ID
	st := b.state(chatID)

	switch action {
	case "habit":
		idx, err := strconv.Atoi(data)
		if err != nil || idx < 0 || idx >= len(habit.Defaults) {
			break
		}
		view := st.toggleHabit(habit.Defaults[idx].Name)

		// Answer callback to remove spinner, then redraw the keyboard.
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID, habitSummary(view), habitKeyboard(view))
		b.api.Send(edit)
	case "style":
		st.setStyle(coach.Style(data))
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
		b.send(chatID, fmt.Sprintf("🎭 코치 스타일: %s\n%s", data, coach.Descriptions[coach.Style(data)]))
	}
}

func (b *Bot) handleMood(chatID int64, arg string) {
	mood, err := strconv.Atoi(arg)
	if err != nil || mood < 1 || mood > 10 {
		b.send(chatID, "기분은 1~10 사이 숫자로 알려주세요. 예: /mood 7")
		return
	}
	b.state(chatID).setMood(mood)
	b.send(chatID, fmt.Sprintf("🙂 오늘 기분: %d/10", mood))
}

func (b *Bot) handleCity(chatID int64, arg string) {
	if arg == "" {
		var labels []string
		for _, c := range weather.Cities {
			labels = append(labels, c.Label)
		}
		b.send(chatID, "🏙️ 도시를 골라주세요: "+strings.Join(labels, ", "))
		return
	}
	query, ok := weather.QueryFor(arg)
	if !ok {
		b.send(chatID, fmt.Sprintf("%q 는 목록에 없는 도시예요. /city 로 목록을 확인하세요.", arg))
		return
	}
	b.state(chatID).setCity(arg, query)
	b.send(chatID, fmt.Sprintf("🏙️ 도시: %s (%s)", arg, query))
}

func (b *Bot) handleMusicRequest(chatID int64) {
	st := b.state(chatID)
	view := st.snapshot()

	statusMsg, err := b.api.Send(tgbotapi.NewMessage(chatID, "🎵 오늘 기분에 맞는 음악을 찾는 중..."))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx := context.Background()
	list, errDetail := b.app.RecommendMusic(ctx, st.session, view.mood, view.cityQuery)
	if errDetail != nil {
		b.edit(chatID, statusMsg.MessageID, "⚠️ 음악 추천을 가져오지 못했어요.\n원인: "+errDetail.Error())
		return
	}

	var sb strings.Builder
	sb.WriteString("🎵 *기분 맞춤 음악 추천*\n\n")
	for i, m := range list {
		fmt.Fprintf(&sb, "*%d. %s*\n", i+1, m.Title)
		if m.Channel != "" {
			fmt.Fprintf(&sb, "채널: %s\n", m.Channel)
		}
		fmt.Fprintf(&sb, "%s\n검색 힌트: %s\n\n", m.VideoURL, m.Query)
	}
	b.editMarkdown(chatID, statusMsg.MessageID, sb.String())
}

func (b *Bot) handleReportRequest(chatID int64) {
	st := b.state(chatID)
	view := st.snapshot()

	statusMsg, err := b.api.Send(tgbotapi.NewMessage(chatID, "🧠 AI 코치가 리포트를 작성 중..."))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx := context.Background()
	result := b.app.GenerateReport(ctx, st.session, view.toCheckIn())

	b.edit(chatID, statusMsg.MessageID, formatCards(view, result))

	if result.ReportErr != nil {
		b.send(chatID, "❌ 리포트 생성 실패: "+result.ReportErr.Error())
	} else {
		b.send(chatID, "🧾 AI 코치 리포트\n\n"+result.Report)
	}

	b.send(chatID, "🔗 공유용 텍스트\n\n"+result.ShareText)
}

func formatCards(view checkInView, result *app.ReportResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "✅ 체크인 저장: %s · 달성률 %.1f%% (%d/%d) · 기분 %d/10\n\n",
		result.Entry.Date, result.Entry.Rate, result.Entry.Achieved, len(habit.Defaults), result.Entry.Mood)

	sb.WriteString("🌦️ 오늘의 날씨\n")
	if result.Weather != nil {
		fmt.Fprintf(&sb, "%s (%s)\n%s\n", view.cityLabel, result.Weather.CityQuery, result.Weather.Summary())
	} else {
		sb.WriteString("날씨 정보를 불러오지 못했어요.\n")
		if result.WeatherErr != nil {
			fmt.Fprintf(&sb, "원인: %s\n", result.WeatherErr.Error())
		}
	}

	sb.WriteString("\n🐶 오늘의 강아지 카드\n")
	if result.Dog != nil {
		fmt.Fprintf(&sb, "품종: %s\n%s\n", result.Dog.Breed, result.Dog.ImageURL)
	} else {
		sb.WriteString("강아지 이미지를 불러오지 못했어요.\n")
	}

	sb.WriteString("\n🎵 오늘의 음악 추천\n")
	if len(result.Music) > 0 {
		top := result.Music
		if len(top) > 3 {
			top = top[:3]
		}
		for i, m := range top {
			fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, m.Title, m.Channel)
		}
	} else {
		sb.WriteString("음악 추천을 가져오지 못했어요.\n")
		if result.MusicErr != nil {
			fmt.Fprintf(&sb, "원인: %s\n", result.MusicErr.Error())
		}
	}

	return sb.String()
}

func (b *Bot) handleShare(chatID int64) {
	shareText := b.state(chatID).session.LatestShareText()
	if shareText == "" {
		b.send(chatID, "아직 공유할 리포트가 없어요. /report 로 먼저 생성해 주세요.")
		return
	}
	b.send(chatID, "🔗 공유용 텍스트\n\n"+shareText)
}

func (b *Bot) handlePublish(chatID int64) {
	st := b.state(chatID)
	post, err := b.app.PublishLatest(st.session)
	if err != nil {
		b.send(chatID, "❌ 발행 실패: "+err.Error())
		return
	}
	b.send(chatID, fmt.Sprintf("✅ 블로그에 발행했어요!\n제목: %s\nURL: %s", post.Title, post.URL))
}

func (b *Bot) handleHistory(chatID int64) {
	st := b.state(chatID)
	view := st.snapshot()
	window := b.app.ChartWindow(st.session, view.checked, view.mood)

	var sb strings.Builder
	sb.WriteString("📈 최근 7일 달성률\n\n")
	for _, e := range window {
		fmt.Fprintf(&sb, "%s  %5.1f%%  (%d/%d, 기분 %d)\n", e.Date, e.Rate, e.Achieved, len(habit.Defaults), e.Mood)
	}
	b.send(chatID, sb.String())
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	// First allow-listed ID is the admin.
	if len(b.cfg.TelegramAllowUserIDs) == 0 || msg.From.ID != b.cfg.TelegramAllowUserIDs[0] {
		b.send(msg.Chat.ID, "⛔ Access Denied: Admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Provider Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d calls (%d failed), avg %.0fms, %d tokens\n",
			d.Date, d.Calls, d.Failures, d.AvgLatencyMS, d.TotalPrompt+d.TotalCompletion)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• DB Size: %s\n", health.DBSize)

	b.sendMarkdown(msg.Chat.ID, sb.String())
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}
