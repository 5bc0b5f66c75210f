package sentiment

// lexicon maps lowercase words to a valence in roughly [-3, 3].
var lexicon = map[string]float64{
	// positive
	"good":            1.9,
	"great":           3.1,
	"excellent":       2.7,
	"awesome":         3.1,
	"amazing":         2.8,
	"fantastic":       2.6,
	"wonderful":       2.7,
	"love":            3.2,
	"like":            1.5,
	"happy":           2.7,
	"glad":            2.0,
	"pleased":         1.9,
	"thanks":          1.9,
	"thank":           1.5,
	"appreciate":      2.1,
	"appreciated":     2.1,
	"congrats":        2.4,
	"congratulations": 2.9,
	"success":         2.7,
	"successful":      2.8,
	"win":             2.8,
	"won":             2.7,
	"shipped":         1.6,
	"launched":        1.5,
	"resolved":        1.8,
	"fixed":           1.5,
	"improved":        1.9,
	"improvement":     1.6,
	"progress":        1.6,
	"ahead":           1.1,
	"smooth":          1.4,
	"stable":          1.2,
	"helpful":         1.9,
	"nice":            1.8,
	"perfect":         2.7,
	"impressive":      2.3,
	"exciting":        2.2,
	"excited":         2.0,
	"growth":          1.6,
	"record":          0.9,
	"approved":        1.6,
	"welcome":         2.0,
	"well":            1.1,
	"best":            3.2,
	"better":          1.9,
	"easy":            1.9,
	"clear":           1.2,
	"confident":       2.2,
	// negative
	"bad":           -2.5,
	"terrible":      -2.1,
	"awful":         -2.0,
	"horrible":      -2.5,
	"worst":         -3.1,
	"worse":         -2.1,
	"hate":          -2.7,
	"angry":         -2.3,
	"upset":         -1.6,
	"annoyed":       -1.6,
	"frustrated":    -2.1,
	"frustrating":   -2.1,
	"disappointed":  -1.9,
	"disappointing": -2.2,
	"sad":           -2.1,
	"sorry":         -0.3,
	"unfortunately": -1.5,
	"problem":       -1.7,
	"problems":      -1.7,
	"issue":         -1.0,
	"issues":        -1.0,
	"bug":           -1.2,
	"bugs":          -1.2,
	"broken":        -2.1,
	"broke":         -1.8,
	"fail":          -2.5,
	"failed":        -2.3,
	"failing":       -2.3,
	"failure":       -2.3,
	"error":         -1.5,
	"errors":        -1.5,
	"outage":        -2.3,
	"down":          -1.0,
	"crash":         -2.2,
	"crashed":       -2.2,
	"delay":         -1.3,
	"delayed":       -1.4,
	"late":          -1.1,
	"behind":        -1.0,
	"blocked":       -1.6,
	"blocker":       -1.6,
	"risk":          -1.1,
	"risky":         -1.3,
	"concern":       -1.2,
	"concerned":     -1.4,
	"worried":       -1.9,
	"urgent":        -0.8,
	"critical":      -1.1,
	"emergency":     -2.2,
	"escalation":    -1.5,
	"complaint":     -2.0,
	"churn":         -1.8,
	"lost":          -1.3,
	"loss":          -1.6,
	"missed":        -1.2,
	"slow":          -1.0,
	"difficult":     -1.5,
	"confusing":     -1.3,
	"unacceptable":  -2.5,
	"poor":          -2.1,
	"wrong":         -2.1,
	"regression":    -1.6,
}

// negators flip the valence of the words that follow them.
var negators = map[string]bool{
	"not":       true,
	"no":        true,
	"never":     true,
	"without":   true,
	"hardly":    true,
	"nothing":   true,
	"neither":   true,
	"nor":       true,
	"cannot":    true,
	"dont":      true,
	"don't":     true,
	"doesn't":   true,
	"didn't":    true,
	"isn't":     true,
	"aren't":    true,
	"wasn't":    true,
	"weren't":   true,
	"won't":     true,
	"can't":     true,
	"couldn't":  true,
	"shouldn't": true,
	"wouldn't":  true,
	"haven't":   true,
	"hasn't":    true,
}

// boosters scale the valence of the next sentiment word.
var boosters = map[string]float64{
	"very":       1.5,
	"really":     1.4,
	"extremely":  1.8,
	"incredibly": 1.8,
	"super":      1.5,
	"so":         1.3,
	"highly":     1.5,
	"totally":    1.4,
	"completely": 1.5,
	"absolutely": 1.6,
	"quite":      1.2,
	"slightly":   0.5,
	"somewhat":   0.6,
	"barely":     0.4,
	"marginally": 0.5,
	"kinda":      0.6,
}
