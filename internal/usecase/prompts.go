package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"pulse-orchestrator/internal/domain"
)

// PromptKind names one editable prompt template family.
type PromptKind string

const (
	PromptTrace    PromptKind = "trace"
	PromptChat     PromptKind = "chat"
	PromptAnalysis PromptKind = "analysis"
	PromptAuto     PromptKind = "auto"
)

var promptKinds = []PromptKind{PromptTrace, PromptChat, PromptAnalysis, PromptAuto}

// builtinPrompts are the shipped locale-keyed templates. Lookup falls back to
// domain.DefaultLocale when a locale has no template, as a first-class rule
// rather than a missing-key accident.
var builtinPrompts = map[PromptKind]map[domain.Locale]string{
	PromptTrace: {
		domain.LocaleZH: `分析这条新闻的溯源信息。请用中文回答。

新闻：{title}
平台：{source}

只返回以下JSON结构，不要其他文字：
{"summary":"一句话总结","credibility":{"score":7,"level":"中","reason":"判断理由"},"origin":{"source":"最早来源","time":"首发时间","type":"官方/媒体/网友","detail":"说明"},"spread":{"path":["平台"],"speed":"快速/中等/缓慢","scope":"全网热议/局部传播/小范围讨论","detail":"说明"},"keyPlayers":[{"name":"传播者","role":"首发/转发/评论","influence":"高/中/低"}],"timeline":[{"time":"时间","event":"事件"}],"distortion":{"hasDistortion":false,"level":"严重/轻微/无","examples":[]},"relatedLinks":[]}`,
		domain.LocaleEN: `Analyze the provenance of this news item. Respond in English.

News: {title}
Platform: {source}

Return only the following JSON structure, no other text:
{"summary":"One sentence summary","credibility":{"score":7,"level":"Medium","reason":"Reason"},"origin":{"source":"Original source","time":"First published","type":"Official/Media/User","detail":"Detail"},"spread":{"path":["Platform"],"speed":"Fast/Medium/Slow","scope":"Viral/Regional/Limited","detail":"Detail"},"keyPlayers":[{"name":"Name","role":"Original/Repost/Comment","influence":"High/Medium/Low"}],"timeline":[{"time":"Time","event":"Event"}],"distortion":{"hasDistortion":false,"level":"Severe/Mild/None","examples":[]},"relatedLinks":[]}`,
		domain.LocaleJA: `このニュースのソースを分析してください。日本語で回答してください。

ニュース：{title}
プラットフォーム：{source}

以下のJSON構造のみを返してください（他のテキストなし）：
{"summary":"一文要約","credibility":{"score":7,"level":"中","reason":"理由"},"origin":{"source":"最初のソース","time":"初出時間","type":"公式/メディア/ユーザー","detail":"説明"},"spread":{"path":["プラットフォーム"],"speed":"速い/普通/遅い","scope":"全国的/地域的/限定的","detail":"説明"},"keyPlayers":[{"name":"名前","role":"発信/転載/コメント","influence":"高/中/低"}],"timeline":[{"time":"時間","event":"イベント"}],"distortion":{"hasDistortion":false,"level":"深刻/軽微/なし","examples":[]},"relatedLinks":[]}`,
	},
	PromptChat: {
		domain.LocaleZH: `你是舆情分析助手。基于提供的新闻数据回答问题。
规则：1.只基于数据回答,不编造 2.无相关信息时明确说明 3.引用时提供标题 4.用中文回答 5.简洁有条理
数据格式：每行一个板块，[板块]标题1|标题2|...`,
		domain.LocaleEN: `You are a news analysis assistant. Answer questions based on the provided news data.
Rules: 1. Only answer from the data, never invent 2. Say so when no relevant info exists 3. Cite titles when quoting 4. Answer in English 5. Be concise.
Data format: one section per line, [section]title1|title2|...`,
		domain.LocaleJA: `あなたはニュース分析アシスタントです。提供されたニュースデータに基づいて回答してください。
ルール：1.データに基づいてのみ回答 2.関連情報がない場合は明示 3.引用時はタイトルを提供 4.日本語で回答 5.簡潔に
データ形式：1行につき1セクション、[セクション]タイトル1|タイトル2|...`,
	},
	PromptAnalysis: {
		domain.LocaleZH: `你是舆情分析助手。请用中文回答。
请一次性完成以下5个分析任务，每个任务的content必须是层次分明的Markdown。
1. hot_keywords: 提取10个高频热词，按热度排序，说明来源
2. sentiment: 情感分析，按板块统计正/中/负面比例，指出负面舆情
3. trending: 识别上升话题，预测潜在热点
4. summary: 生成舆情简报，含各板块热点、重大事件、异常情况
5. cross_platform: 找出跨板块共同话题
严格返回以下JSON格式（不要有其他内容）：
{"hot_keywords":"...","sentiment":"...","trending":"...","summary":"...","cross_platform":"..."}`,
		domain.LocaleEN: `You are a news analysis assistant. Respond in English.
Complete the following 5 analysis tasks in one pass; each task's content must be well-structured Markdown.
1. hot_keywords: extract 10 high-frequency keywords, sorted by popularity, with sources
2. sentiment: positive/neutral/negative ratios per section, flag negative coverage
3. trending: identify rising topics, predict potential hot topics
4. summary: a briefing covering hot topics, major events, anomalies
5. cross_platform: common topics across sections
Return strictly this JSON format (nothing else):
{"hot_keywords":"...","sentiment":"...","trending":"...","summary":"...","cross_platform":"..."}`,
		domain.LocaleJA: `あなたはニュース分析アシスタントです。日本語で回答してください。
以下の5つの分析タスクを一度に完了してください。各contentは整形されたMarkdownであること。
1. hot_keywords: 高頻度キーワード10個を人気順に抽出、ソースを記載
2. sentiment: セクション別のポジティブ/ニュートラル/ネガティブ比率
3. trending: 上昇トピックの特定と潜在的なホットトピックの予測
4. summary: ホットトピック・重大イベント・異常を含むブリーフィング
5. cross_platform: セクション間の共通トピック
以下のJSON形式のみで返してください：
{"hot_keywords":"...","sentiment":"...","trending":"...","summary":"...","cross_platform":"..."}`,
	},
	PromptAuto: {
		domain.LocaleZH: `你是舆情分析助手。基于提供的新闻数据执行综合分析：
1. 热点概览：列出各板块 Top 3 热点
2. 热词提取：提取 5 个最热门的关键词
3. 趋势洞察：识别正在上升的话题
4. 异常检测：是否有值得关注的异常情况
输出要求：简洁、有条理、使用 Markdown 格式`,
		domain.LocaleEN: `You are a news analysis assistant. Run a combined analysis over the provided data:
1. Hot topics: top 3 items per section
2. Keywords: the 5 hottest keywords
3. Trend insight: topics on the rise
4. Anomalies: anything worth an operator's attention
Output: concise, structured Markdown`,
	},
}

var taskNames = map[domain.Locale]map[domain.TaskID]string{
	domain.LocaleZH: {
		domain.TaskHotKeywords:   "🔥 热词分析",
		domain.TaskSentiment:     "😊 情感分析",
		domain.TaskTrending:      "📈 趋势预测",
		domain.TaskSummary:       "📋 综合摘要",
		domain.TaskCrossPlatform: "🔗 跨板块分析",
	},
	domain.LocaleEN: {
		domain.TaskHotKeywords:   "🔥 Hot Keywords",
		domain.TaskSentiment:     "😊 Sentiment",
		domain.TaskTrending:      "📈 Trending",
		domain.TaskSummary:       "📋 Summary",
		domain.TaskCrossPlatform: "🔗 Cross Platform",
	},
	domain.LocaleJA: {
		domain.TaskHotKeywords:   "🔥 キーワード",
		domain.TaskSentiment:     "😊 感情分析",
		domain.TaskTrending:      "📈 トレンド",
		domain.TaskSummary:       "📋 サマリー",
		domain.TaskCrossPlatform: "🔗 クロス分析",
	},
}

// TaskName returns the locale's display name for a task, falling back to the
// raw task id for unknown combinations.
func TaskName(taskID domain.TaskID, locale domain.Locale) string {
	if names, ok := taskNames[locale]; ok {
		if name, ok := names[taskID]; ok {
			return name
		}
	}
	if names, ok := taskNames[domain.DefaultLocale]; ok {
		if name, ok := names[taskID]; ok {
			return name
		}
	}
	return string(taskID)
}

// PromptCatalog resolves the template for a prompt kind and locale. Operators
// can override shipped templates through the prompt endpoints; overrides are
// persisted to a JSON file so they survive restarts.
type PromptCatalog struct {
	mu        sync.RWMutex
	path      string
	overrides map[PromptKind]map[domain.Locale]string
	logger    *slog.Logger
}

// NewPromptCatalog loads any existing override file. A missing file is not an
// error; an unreadable one is logged and ignored. path may be empty for an
// in-memory catalog (tests).
func NewPromptCatalog(path string, logger *slog.Logger) *PromptCatalog {
	c := &PromptCatalog{
		path:      path,
		overrides: make(map[PromptKind]map[domain.Locale]string),
		logger:    logger,
	}
	if path == "" {
		return c
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read prompt overrides", "path", path, "error", err)
		}
		return c
	}
	if err := json.Unmarshal(data, &c.overrides); err != nil {
		logger.Warn("failed to parse prompt overrides", "path", path, "error", err)
		c.overrides = make(map[PromptKind]map[domain.Locale]string)
	}
	return c
}

// Resolve returns the template for kind and locale: override first, then the
// shipped template, then the default locale's shipped template.
func (c *PromptCatalog) Resolve(kind PromptKind, locale domain.Locale) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if byLocale, ok := c.overrides[kind]; ok {
		if tpl, ok := byLocale[locale]; ok && tpl != "" {
			return tpl
		}
	}
	byLocale := builtinPrompts[kind]
	if tpl, ok := byLocale[locale]; ok {
		return tpl
	}
	return byLocale[domain.DefaultLocale]
}

// TracePrompt renders the trace template with the article's title and source.
func (c *PromptCatalog) TracePrompt(locale domain.Locale, title, source string) string {
	tpl := c.Resolve(PromptTrace, locale)
	tpl = strings.Replace(tpl, "{title}", title, 1)
	return strings.Replace(tpl, "{source}", source, 1)
}

// ChatSystemPrompt returns the system instructions for the chat pipeline.
func (c *PromptCatalog) ChatSystemPrompt(locale domain.Locale) string {
	return c.Resolve(PromptChat, locale)
}

// AnalysisPrompt returns the combined five-task instructions.
func (c *PromptCatalog) AnalysisPrompt(locale domain.Locale) string {
	return c.Resolve(PromptAnalysis, locale)
}

// AutoAnalysisPrompt returns the instructions for the webhook-triggered run.
func (c *PromptCatalog) AutoAnalysisPrompt(locale domain.Locale) string {
	return c.Resolve(PromptAuto, locale)
}

// All returns the effective templates (shipped merged with overrides),
// suitable for the prompt editor.
func (c *PromptCatalog) All() map[PromptKind]map[domain.Locale]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[PromptKind]map[domain.Locale]string, len(promptKinds))
	for _, kind := range promptKinds {
		merged := make(map[domain.Locale]string)
		for locale, tpl := range builtinPrompts[kind] {
			merged[locale] = tpl
		}
		for locale, tpl := range c.overrides[kind] {
			merged[locale] = tpl
		}
		out[kind] = merged
	}
	return out
}

// ReplaceAll swaps the whole override set and persists it.
func (c *PromptCatalog) ReplaceAll(overrides map[PromptKind]map[domain.Locale]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for kind := range overrides {
		if !validPromptKind(kind) {
			return fmt.Errorf("unknown prompt kind %q", kind)
		}
	}
	c.overrides = overrides
	return c.persistLocked()
}

// SetOverride updates a single template and persists the override set.
func (c *PromptCatalog) SetOverride(kind PromptKind, locale domain.Locale, content string) error {
	if !validPromptKind(kind) {
		return fmt.Errorf("unknown prompt kind %q", kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.overrides[kind] == nil {
		c.overrides[kind] = make(map[domain.Locale]string)
	}
	c.overrides[kind][locale] = content
	return c.persistLocked()
}

func (c *PromptCatalog) persistLocked() error {
	if c.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(c.overrides, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prompt overrides: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prompt overrides: %w", err)
	}
	return nil
}

func validPromptKind(kind PromptKind) bool {
	switch kind {
	case PromptTrace, PromptChat, PromptAnalysis, PromptAuto:
		return true
	}
	return false
}
