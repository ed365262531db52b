package parser

import "regexp"

// Rule tables for field extraction. Each field resolves through its own
// ordered list; lists run most-specific first and stop at the first match.

var whitespaceRe = regexp.MustCompile(`\s+`)

// platformVocabulary is checked in order against the lowercased text.
// Facebook gets extra heuristics because screenshots rarely spell it out.
var platformVocabulary = []string{"facebook", "instagram", "twitter", "tiktok", "youtube", "telegram"}

var facebookHints = []string{"fb", "post ini"}

// prizeRules capture known prize-phrase shapes. The captured group (or the
// whole match when there is no group) becomes the prize string.
var prizeRules = []*regexp.Regexp{
	// Jewellery campaign phrasing seen in gold-bar contests.
	regexp.MustCompile(`(?i)(?:win|prize|giveaway|stand a chance to win)[\s\S]*?(999\s+Pure\s+Gold\s+Hornbill\s+Gold\s+Bar\s*\+\s*RM\d+\s+Cash\s+Voucher)`),
	regexp.MustCompile(`(?i)(?:win|prize|giveaway|stand a chance to win)[\s\S]*?(999\s+Pure\s+Gold|Gold\s+Bar|RM[\d,]+|Cash\s+Voucher)`),

	// Named products after a win/prize verb, English and Malay.
	regexp.MustCompile(`(?i)(?:nak menang|menang|hadiah|cabutan)[\s\S]*?(Corvan[\w\s&]*Vacuum|vacuum|iPhone|Samsung|iPad|MacBook|laptop|percutian|hotel|resort|tunai|diapers|wipes|babycare|pickleball)`),
	regexp.MustCompile(`(?i)(?:win|prize|giveaway)[\s\S]*?(Corvan[\w\s&]*Vacuum|vacuum|iPhone|Samsung|iPad|MacBook|laptop|staycation|hotel|resort|trip|vacation|family of \d+|diapers|wipes|babycare|pickleball)`),
	regexp.MustCompile(`(?i)(Corvan|vacuum|iPhone|Samsung|iPad|MacBook|laptop)[\s\w]*(?:giveaway|prize|win|menang)`),

	// Staycation phrasing.
	regexp.MustCompile(`(?i)(staycation|hotel|resort|trip|vacation)[\s\w]*(?:for|of|with)[\s\w]*(?:family|adults?|kids?)`),

	// Monetary amounts near a prize word.
	regexp.MustCompile(`(?i)(\$[\d,]+|RM[\d,]+)\s*(?:worth|value|cash|prize|bernilai|nilai|tunai|hadiah)`),
	regexp.MustCompile(`(?i)(?:win|prize|giveaway)[\s\S]*?(\$[\d,]+|RM[\d,]+)`),

	// Explicit labels.
	regexp.MustCompile(`(?i)hadiah\s*:\s*([^.!?\n]+)`),
	regexp.MustCompile(`(?i)prize\s*:\s*([^.!?\n]+)`),
}

// Deadline anchors. Groups are (day, month-word, year); the month word is
// validated separately so arbitrary words never produce dates. The \D run
// between anchor and day tolerates OCR noise like `": J+ "`.
var (
	contestEndsRe  = regexp.MustCompile(`(?i)contest\s+ends?\D{0,10}(\d{1,2})\s+([A-Za-z]{3,9})\.?,?\s*(\d{2,4})`)
	giveawayEndsRe = regexp.MustCompile(`(?i)giveaway\s+ends?\D{0,10}(\d{1,2})\s+([A-Za-z]{3,9})\.?,?\s*(\d{2,4})`)

	// Malay close phrasing, optionally naming the weekday: "tamat pada
	// Khamis 25/9". Groups are (day, month); the year is assumed current.
	malayEndsRe = regexp.MustCompile(`(?i)(?:tamat|berakhir)\s+(?:pada\s+)?(?:hari\s+)?(?:khamis|jumaat|sabtu|ahad|isnin|selasa|rabu)?\s*(\d{1,2})/(\d{1,2})`)

	// Generic date shapes anywhere in the text, tried after the anchors.
	dayMonthYearRe = regexp.MustCompile(`\b(\d{1,2})\s+([A-Za-z]{3,9})\.?,?\s*(\d{2,4})\b`)
	monthDayYearRe = regexp.MustCompile(`\b([A-Za-z]{3,9})\s+(\d{1,2}),?\s+(\d{4})\b`)
	numericDateRe  = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})\b`)
	shortDateRe    = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})\b`)

	timeOfDayRe = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*([APap][Mm])?\b`)
)

// Winner-announcement rules. Date-bearing patterns capture a numeric date;
// marker patterns signal "same day as the deadline".
var winnerDateRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)winner.*?(?:announce|reveal|pick).*?(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:announce|reveal|pick).*?winner.*?(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?i)pemenang.*?(?:diumumkan|dipilih).*?(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:diumumkan|dipilih).*?pemenang.*?(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
}

var winnerSameDayRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:winner|announce|result).*?same day`),
	regexp.MustCompile(`(?i)(?:pemenang|diumumkan|keputusan|hasil).*?hari yang sama`),
}

// requirementRules are presence checks, not mutually exclusive. All matched
// labels are joined into the requirements string, in this order.
var requirementRules = []struct {
	label string
	words []string
}{
	{"Follow", []string{"follow", "ikut", "ikuti"}},
	{"Subscribe", []string{"subscribe", "langgan"}},
	{"Like", []string{"like", "suka", "thumbs up"}},
	{"Comment", []string{"comment", "komen", "ulasan"}},
	{"Share", []string{"share", "kongsi", "repost"}},
	{"Tag friends", []string{"tag", "mention", "sebut", "kawan", "friend"}},
	{"Submit poem/pantun", []string{"poem", "pantun", "诗歌", "submit", "tulis", "poetry", "verse"}},
	{"Submit caption/text", []string{"caption", "entry", "submission"}},
}

// titleKeywords mark a line as the probable headline of the post.
var titleKeywords = []string{"giveaway", "contest", "cabutan", "hadiah", "win", "guess", "gold"}

// Title cleanup passes, applied in order to the selected line.
var (
	leadingNonLetterRe = regexp.MustCompile(`^[^A-Za-z]*`)
	punctuationRe      = regexp.MustCompile(`[^\w\s]`)
	ageAuthorMetaRe    = regexp.MustCompile(`(?i)\d+[dhm]\s*\d*\s*Author?`)
	ageMarkerRe        = regexp.MustCompile(`(?i)\b\d+[dhm]\b`)
	authorLabelRe      = regexp.MustCompile(`(?i)\bAuthor\b`)
	ocrArtifactRe      = regexp.MustCompile(`(?i)\b(?:eee|x|q)\b`)
	giveawayVerbRe     = regexp.MustCompile(`(?i)\b(?:comment|answer|correct|stand|chance)\b`)
)

// organizerRules run most-specific first: known brand literals, then the
// structural cues a social header leaves behind (relative-time markers,
// copyright line, handles), then capitalized-name fallbacks.
var organizerRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(SK\s+Jewellery\s+Malaysia)`),
	regexp.MustCompile(`(?i)(Iconic\s+Babycare)`),
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s*[-&]?\s*\d+[dhm]\b`),
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s*[-&]?\s*Author\b`),
	regexp.MustCompile(`©\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Malaysia|Jewellery|Corp|Ltd|Inc))`),
	regexp.MustCompile(`@([A-Za-z0-9_.]+)`),
	regexp.MustCompile(`(?i)\bby\s+([A-Za-z][A-Za-z ]{2,40})`),
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+(?i:giveaway|contest)`),
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
}
