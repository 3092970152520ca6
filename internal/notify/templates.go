package notify

import (
	"fmt"

	"github.com/ilhanBektas/cs2-backend/internal/models"
)

type template struct {
	title string
	body  string
}

// Per-language message templates. A language without a template for a
// kind falls back to the default language.
var templates = map[string]map[string]template{
	"en": {
		"starting":      {title: "Match Started", body: "%s vs %s is live now!"},
		"finished_win":  {title: "Match Finished", body: "%s beat %s (%s)"},
		"finished_draw": {title: "Match Finished", body: "%s and %s drew (%s)"},
		"score":         {title: "Score Update", body: "%s %s %s"},
		"reminder":      {title: "Match Starting Soon", body: "%s vs %s starts in 15 minutes"},
	},
	"tr": {
		"starting":      {title: "Maç Başladı", body: "%s - %s maçı başladı!"},
		"finished_win":  {title: "Maç Bitti", body: "%s, %s karşısında kazandı (%s)"},
		"finished_draw": {title: "Maç Bitti", body: "%s ile %s berabere kaldı (%s)"},
		"score":         {title: "Skor Güncellemesi", body: "%s %s %s"},
		"reminder":      {title: "Maç Yaklaşıyor", body: "%s - %s maçı 15 dakika içinde başlıyor"},
	},
}

func lookupTemplate(language, key string) template {
	if byKey, ok := templates[language]; ok {
		if tpl, ok := byKey[key]; ok {
			return tpl
		}
	}
	return templates[models.DefaultLanguage][key]
}

// renderMessage produces the localized title and body for an event.
func renderMessage(language string, ev models.Event) (title, body string) {
	switch ev.Kind {
	case models.EventMatchStarting:
		tpl := lookupTemplate(language, "starting")
		return tpl.title, fmt.Sprintf(tpl.body, ev.Teams[0], ev.Teams[1])
	case models.EventMatchFinished:
		if ev.Draw || ev.WinnerName == "" {
			tpl := lookupTemplate(language, "finished_draw")
			return tpl.title, fmt.Sprintf(tpl.body, ev.Teams[0], ev.Teams[1], ev.Score)
		}
		loser := ev.Teams[0]
		if loser == ev.WinnerName {
			loser = ev.Teams[1]
		}
		tpl := lookupTemplate(language, "finished_win")
		return tpl.title, fmt.Sprintf(tpl.body, ev.WinnerName, loser, ev.Score)
	case models.EventScoreUpdate:
		tpl := lookupTemplate(language, "score")
		return tpl.title, fmt.Sprintf(tpl.body, ev.Teams[0], ev.Score, ev.Teams[1])
	case models.EventMatchReminder:
		tpl := lookupTemplate(language, "reminder")
		return tpl.title, fmt.Sprintf(tpl.body, ev.Teams[0], ev.Teams[1])
	default:
		return "", ""
	}
}
