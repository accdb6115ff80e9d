package responder

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/offline-assistant/internal/calc"
	"github.com/xaenox/offline-assistant/internal/classifier"
	"github.com/xaenox/offline-assistant/internal/language"
	"github.com/xaenox/offline-assistant/internal/memory"
	"github.com/xaenox/offline-assistant/internal/models"
)

type ConversationInput struct {
	Text     string
	Language models.Language
	// History is oldest first.
	History []models.Turn
	Memory  models.FactReader
}

// turn is one conversational input after normalization.
type turn struct {
	in     ConversationInput
	text   string
	lang   models.Language
	bank   *Bank
	stated map[models.FactKey]string
}

func newTurn(in ConversationInput, lang models.Language) *turn {
	if in.Memory == nil {
		in.Memory = noFacts{}
	}
	return &turn{
		in:     in,
		text:   classifier.Normalize(in.Text),
		lang:   lang,
		bank:   BankFor(lang),
		stated: memory.Extract(in.Text),
	}
}

func (t *turn) fact(key models.FactKey) (string, bool) {
	v, ok := t.in.Memory.Get(key)
	return v, ok && v != ""
}

type noFacts struct{}

func (noFacts) Get(models.FactKey) (string, bool) { return "", false }
func (noFacts) Facts() map[models.FactKey]string  { return map[models.FactKey]string{} }

type convRule struct {
	name   string
	match  func(t *turn) bool
	handle func(e *Engine, t *turn) string
}

func matches(patterns ...string) func(t *turn) bool {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return func(t *turn) bool {
		for _, re := range compiled {
			if re.MatchString(t.text) {
				return true
			}
		}
		return false
	}
}

func states(key models.FactKey) func(t *turn) bool {
	return func(t *turn) bool { return t.stated[key] != "" }
}

func isEmpty(t *turn) bool { return t.text == "" }

var (
	whoIsExpr     = regexp.MustCompile(`^who (?:is|was) (.+)$`)
	howToExpr     = regexp.MustCompile(`^how (?:do i|do you|can i|should i|to) (.+)$`)
	whyExpr       = regexp.MustCompile(`^why\b(.*)$`)
	knowledgeExpr = regexp.MustCompile(`^(?:what is|what's|what are|tell me about|explain|define) (.+)$`)
	subjectTrim   = regexp.MustCompile(`^(?:a|an|the)\s+`)
)

func subject(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	s := strings.Trim(m[1], " ?.!؟")
	return subjectTrim.ReplaceAllString(s, "")
}

func knowsTopic(t *turn) bool {
	s := subject(knowledgeExpr, t.text)
	if s == "" {
		return false
	}
	_, ok := lookup(t.bank.Knowledge, s)
	return ok
}

// isMath accepts anything the evaluator can read as an expression, plus
// explicit requests that name no operator.
func isMath(explicit ...string) func(t *turn) bool {
	asked := matches(explicit...)
	return func(t *turn) bool {
		return calc.IsExpression(t.text) || asked(t)
	}
}

var englishConversation, farsiConversation []convRule

// The tables are filled in init because handleAnother dispatches through
// them. First match wins.
func init() {
	englishConversation = []convRule{
		{"empty", isEmpty, (*Engine).handleEmpty},
		{"greeting", matches(`^(?:hi|hello|hey|hiya|howdy|greetings|good (?:morning|afternoon|evening))\b`), (*Engine).handleGreeting},
		{"how_are_you", matches(`\bhow are you\b`, `\bhow's it going\b`, `\bhow are things\b`, `\bhow do you do\b`), (*Engine).handleHowAreYou},
		{"farewell", matches(`^(?:(?:ok(?:ay)?|well|alright),?\s+)?(?:bye|goodbye|good night|see you|farewell)\b`), (*Engine).handleFarewell},
		{"thanks", matches(`\bthank(?:s| you)\b`, `\bappreciate it\b`), (*Engine).handleThanks},
		{"recall_name", matches(`\bwhat(?:'s| is) my name\b`, `\bdo you (?:know|remember) my name\b`, `\bwho am i\b`), (*Engine).handleRecallName},
		{"recall_likes", matches(`\bwhat do i (?:like|love)\b`), (*Engine).handleRecallLikes},
		{"recall_location", matches(`\bwhere do i live\b`, `\bwhere am i from\b`), (*Engine).handleRecallLocation},
		{"recall_job", matches(`\bwhat(?:'s| is) my (?:job|profession)\b`, `\bwhat do i do for (?:a )?(?:living|work)\b`, `\bwhere do i work\b`), (*Engine).handleRecallJob},
		{"recall_all", matches(`\bwhat do you (?:know|remember) about me\b`), (*Engine).handleRecallAll},
		{"introduce_name", states(models.FactUserName), (*Engine).handleIntroduceName},
		{"state_like", states(models.FactLikes), (*Engine).handleStateLike},
		{"state_location", states(models.FactLocation), (*Engine).handleStateLocation},
		{"state_job", states(models.FactJob), (*Engine).handleStateJob},
		{"repeat", matches(`\b(?:repeat that|say that again|say it again|what did you say|come again|pardon)\b`), (*Engine).handleRepeat},
		{"another", matches(`\b(?:another|one more)\b`), (*Engine).handleAnother},
		{"time", matches(`\bwhat time\b`, `\btime is it\b`, `\bcurrent time\b`, `\btell me the time\b`), (*Engine).handleTime},
		{"date", matches(`\bwhat(?:'s| is)? (?:the |today'?s )?date\b`, `\bwhat day is\b`, `\btoday'?s date\b`), (*Engine).handleDate},
		{"math", isMath(`\bsquare root\b`, `\bsqrt\b`, `√`, `\bcalculate\b`, `\bcompute\b`), (*Engine).handleMath},
		{"joke", matches(`\bjokes?\b`, `\bmake me laugh\b`, `\bsomething funny\b`), (*Engine).handleJoke},
		{"fact", matches(`\bfacts?\b`, `\btell me something interesting\b`), (*Engine).handleFact},
		{"quote", matches(`\bquotes?\b`, `\binspire me\b`, `\binspiration\b`), (*Engine).handleQuote},
		{"story", matches(`\bstory\b`, `\bstories\b`), (*Engine).handleStory},
		{"riddle", matches(`\briddles?\b`), (*Engine).handleRiddle},
		{"trivia", matches(`\btrivia\b`, `\bquiz me\b`), (*Engine).handleTrivia},
		{"advice", matches(`\badvice\b`, `\bany tips?\b`, `\bgive me a tip\b`), (*Engine).handleAdvice},
		{"who_is", matches(whoIsExpr.String()), (*Engine).handleWhoIs},
		{"how_to", matches(howToExpr.String()), (*Engine).handleHowTo},
		{"why", matches(whyExpr.String()), (*Engine).handleWhy},
		{"knowledge", knowsTopic, (*Engine).handleKnowledge},
		{"identity", matches(`\bwho are you\b`, `\bwhat(?:'s| is) your name\b`, `\bwhat are you\b`, `\bare you a robot\b`), (*Engine).handleIdentity},
		{"capabilities", matches(`\bwhat can you do\b`, `\bwhat do you do\b`, `\bhelp\b`, `\byour (?:features|abilities)\b`), (*Engine).handleCapabilities},
		{"weather", matches(`\bweather\b`, `\b(?:raining|sunny|forecast|temperature)\b`), (*Engine).handleWeather},
		{"default", func(*turn) bool { return true }, (*Engine).handleDefault},
	}

	farsiConversation = []convRule{
		{"empty", isEmpty, (*Engine).handleEmpty},
		{"greeting", matches(`^(?:سلام|درود|صبح بخیر|روز بخیر|عصر بخیر)`), (*Engine).handleGreeting},
		{"how_are_you", matches(`چطوری`, `حالت چطور`, `حالتون چطور`, `حال شما چطور`), (*Engine).handleHowAreYou},
		{"farewell", matches(`^(?:(?:خب|باشه|پس)،?\s+)?(?:خداحافظ|خدانگهدار|بدرود|شب بخیر)`), (*Engine).handleFarewell},
		{"thanks", matches(`ممنون`, `مرسی`, `متشکرم`, `سپاس`), (*Engine).handleThanks},
		{"recall_name", matches(`اسمم چیه`, `اسم من چیه`, `اسمم چیست`, `اسم من چیست`, `منو می ?شناسی`), (*Engine).handleRecallName},
		{"introduce_name", states(models.FactUserName), (*Engine).handleIntroduceName},
		{"repeat", matches(`دوباره بگو`, `تکرار کن`, `چی گفتی`), (*Engine).handleRepeat},
		{"time", matches(`ساعت چند`, `چه ساعتی`, `الان ساعت`), (*Engine).handleTime},
		{"date", matches(`تاریخ`, `امروز چندم`, `امروز چه روز`, `چه روزی`), (*Engine).handleDate},
		{"math", isMath(`حساب کن`, `جذر`), (*Engine).handleMath},
		{"joke", matches(`جوک`, `لطیفه`, `بخندون`), (*Engine).handleJoke},
		{"fact", matches(`دانستنی`, `واقعیت جالب`), (*Engine).handleFact},
		{"quote", matches(`نقل قول`, `جمله قصار`, `سخن بزرگان`), (*Engine).handleQuote},
		{"story", matches(`داستان`, `قصه`), (*Engine).handleStory},
		{"riddle", matches(`معما`, `چیستان`), (*Engine).handleRiddle},
		{"advice", matches(`نصیحت`, `توصیه`, `راهنمایی کن`), (*Engine).handleAdvice},
		{"identity", matches(`تو کی هستی`, `کی هستی`, `اسمت چیه`), (*Engine).handleIdentity},
		{"capabilities", matches(`چه کاری? می ?تونی`, `چیکار می ?تونی`, `کمک`), (*Engine).handleCapabilities},
		{"weather", matches(`آب و هوا`, `هوا`, `باران`), (*Engine).handleWeather},
		{"default", func(*turn) bool { return true }, (*Engine).handleDefault},
	}
}

func conversationTable(lang models.Language) []convRule {
	if lang == models.LanguageFarsi {
		return farsiConversation
	}
	return englishConversation
}

// Rules returns the conversational rule names for lang in precedence order.
func Rules(lang models.Language) []string {
	table := conversationTable(lang)
	names := make([]string, len(table))
	for i, r := range table {
		names[i] = r.name
	}
	return names
}

func match(t *turn) convRule {
	table := conversationTable(t.lang)
	for _, r := range table {
		if r.match(t) {
			return r
		}
	}
	return table[len(table)-1]
}

func conversationLanguage(in ConversationInput) models.Language {
	if in.Language != "" {
		return in.Language
	}
	return language.DetectStrict(in.Text, language.DefaultStrictThreshold)
}

// MatchRule names the rule Generate would use for in.
func MatchRule(in ConversationInput) string {
	return match(newTurn(in, conversationLanguage(in))).name
}

// Generate answers raw text using memory and history.
func (e *Engine) Generate(ctx context.Context, in ConversationInput) (reply string) {
	lang := conversationLanguage(in)
	defer e.recoverTo(&reply, lang, "conversational")

	t := newTurn(in, lang)
	r := match(t)
	e.logger.Debug("Conversation rule matched",
		zap.String("rule", r.name),
		zap.String("language", string(lang)))
	return r.handle(e, t)
}

func (e *Engine) handleEmpty(t *turn) string {
	return t.bank.Messages.Empty
}

func (e *Engine) named(plain, withName []string, t *turn) string {
	if name, ok := t.fact(models.FactUserName); ok && len(withName) > 0 {
		return fmt.Sprintf(e.pick(withName), name)
	}
	return e.pick(plain)
}

func (e *Engine) handleGreeting(t *turn) string {
	return e.named(t.bank.Phrases.Greetings, t.bank.Phrases.GreetingsNamed, t)
}

func (e *Engine) handleHowAreYou(t *turn) string {
	return e.pick(t.bank.Phrases.HowAreYou)
}

func (e *Engine) handleFarewell(t *turn) string {
	return e.named(t.bank.Phrases.Farewells, t.bank.Phrases.FarewellsNamed, t)
}

func (e *Engine) handleThanks(t *turn) string {
	return e.pick(t.bank.Phrases.Thanks)
}

func (e *Engine) recall(t *turn, key models.FactKey, known, unknown string) string {
	if v, ok := t.fact(key); ok {
		return fmt.Sprintf(known, v)
	}
	return unknown
}

func (e *Engine) handleRecallName(t *turn) string {
	m := t.bank.Messages
	return e.recall(t, models.FactUserName, m.NameKnown, m.NameUnknown)
}

func (e *Engine) handleRecallLikes(t *turn) string {
	m := t.bank.Messages
	return e.recall(t, models.FactLikes, m.LikesKnown, m.LikesUnknown)
}

func (e *Engine) handleRecallLocation(t *turn) string {
	m := t.bank.Messages
	return e.recall(t, models.FactLocation, m.LocationKnown, m.LocationUnknown)
}

func (e *Engine) handleRecallJob(t *turn) string {
	m := t.bank.Messages
	return e.recall(t, models.FactJob, m.JobKnown, m.JobUnknown)
}

var factOrder = []models.FactKey{models.FactUserName, models.FactLikes, models.FactLocation, models.FactJob}

func (e *Engine) handleRecallAll(t *turn) string {
	m := t.bank.Messages
	var lines []string
	for _, key := range factOrder {
		if v, ok := t.fact(key); ok {
			lines = append(lines, fmt.Sprintf("%s: %s", m.FactLabels[key], v))
		}
	}
	if len(lines) == 0 {
		return m.AboutYouEmpty
	}
	return bulleted(m.AboutYou, lines)
}

func (e *Engine) handleIntroduceName(t *turn) string {
	return capitalize(fmt.Sprintf(e.pick(t.bank.Phrases.NiceToMeet), t.stated[models.FactUserName]))
}

func (e *Engine) handleStateLike(t *turn) string {
	return capitalize(fmt.Sprintf(e.pick(t.bank.Phrases.StateLike), t.stated[models.FactLikes]))
}

func (e *Engine) handleStateLocation(t *turn) string {
	return capitalize(fmt.Sprintf(e.pick(t.bank.Phrases.StateLocation), t.stated[models.FactLocation]))
}

func (e *Engine) handleStateJob(t *turn) string {
	return capitalize(fmt.Sprintf(e.pick(t.bank.Phrases.StateJob), t.stated[models.FactJob]))
}

func (e *Engine) handleRepeat(t *turn) string {
	h := t.in.History
	if len(h) == 0 || h[len(h)-1].Assistant == "" {
		return t.bank.Messages.NothingToRepeat
	}
	return h[len(h)-1].Assistant
}

// handleAnother walks back to the last user turn that asked for content and
// answers it again, which for random banks means a fresh pick.
func (e *Engine) handleAnother(t *turn) string {
	h := t.in.History
	for i := len(h) - 1; i >= 0; i-- {
		prev := newTurn(ConversationInput{
			Text:     h[i].User,
			Language: t.lang,
			History:  h[:i],
			Memory:   t.in.Memory,
		}, t.lang)

		r := match(prev)
		switch r.name {
		case "empty", "repeat", "another":
			continue
		case "default":
			return t.bank.Messages.NothingBefore
		}
		return r.handle(e, prev)
	}
	return t.bank.Messages.NothingBefore
}

func (e *Engine) handleTime(t *turn) string {
	return e.formatTime(t.lang)
}

func (e *Engine) handleDate(t *turn) string {
	return e.formatDate(t.lang)
}

func (e *Engine) handleMath(t *turn) string {
	return e.calculate(t.in.Text, t.lang)
}

func (e *Engine) handleJoke(t *turn) string     { return e.pick(t.bank.Phrases.Jokes) }
func (e *Engine) handleFact(t *turn) string     { return e.pick(t.bank.Phrases.Facts) }
func (e *Engine) handleQuote(t *turn) string    { return e.pick(t.bank.Phrases.Quotes) }
func (e *Engine) handleStory(t *turn) string    { return e.pick(t.bank.Phrases.Stories) }
func (e *Engine) handleRiddle(t *turn) string   { return e.pick(t.bank.Phrases.Riddles) }
func (e *Engine) handleTrivia(t *turn) string   { return e.pick(t.bank.Phrases.Trivia) }
func (e *Engine) handleAdvice(t *turn) string   { return e.pick(t.bank.Phrases.Advice) }
func (e *Engine) handleIdentity(t *turn) string { return e.pick(t.bank.Phrases.Identity) }
func (e *Engine) handleWeather(t *turn) string  { return e.pick(t.bank.Phrases.Weather) }

func (e *Engine) handleCapabilities(t *turn) string {
	return e.pick(t.bank.Phrases.Capabilities)
}

func (e *Engine) handleWhoIs(t *turn) string {
	s := subject(whoIsExpr, t.text)
	if answer, ok := lookup(t.bank.People, s); ok {
		return answer
	}
	return fmt.Sprintf(t.bank.Messages.WhoUnknown, s)
}

func (e *Engine) handleHowTo(t *turn) string {
	if answer, ok := lookup(t.bank.HowTo, subject(howToExpr, t.text)); ok {
		return answer
	}
	return t.bank.Messages.HowUnknown
}

func (e *Engine) handleWhy(t *turn) string {
	if answer, ok := lookup(t.bank.Why, subject(whyExpr, t.text)); ok {
		return answer
	}
	return t.bank.Messages.WhyUnknown
}

func (e *Engine) handleKnowledge(t *turn) string {
	answer, _ := lookup(t.bank.Knowledge, subject(knowledgeExpr, t.text))
	return answer
}

var (
	englishQuestionWords = wordSet("what who where when why how which whose whom is are am was were can could do does did will would should shall may might have has")
	farsiQuestionWords   = wordSet("چه چرا کی کجا چطور چگونه آیا کدام چند چی")
)

func wordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

func isQuestion(t *turn) bool {
	raw := strings.TrimSpace(t.in.Text)
	if strings.HasSuffix(raw, "?") || strings.HasSuffix(raw, "؟") {
		return true
	}
	fields := strings.Fields(t.text)
	if len(fields) == 0 {
		return false
	}
	first := strings.Trim(fields[0], ",.!")
	words := englishQuestionWords
	if t.lang == models.LanguageFarsi {
		words = farsiQuestionWords
	}
	_, ok := words[first]
	return ok
}

func (e *Engine) handleDefault(t *turn) string {
	d := t.bank.Defaults
	if isQuestion(t) {
		return e.named(d.Question, d.QuestionNamed, t)
	}
	return e.named(d.Statement, d.StatementNamed, t)
}
