package summarizer

import (
	"strings"

	"github.com/RobinCoderZhao/alert-digest/pkg/i18n"
)

// stopWords are removed before stemming. Words are lowercase and split the
// same way Words splits sentences, so elided forms ("l'", "qu'") appear as
// their leading fragment.
var stopWords = map[i18n.Language]map[string]bool{
	i18n.LangFR: setOf(strings.Fields(`
		a à afin ai aie aient aies ait alors as au aucun aucune aupres auquel aura
		aurai auraient aurais aurait auras aurez auriez aurions aurons auront aussi
		autre autres aux auxquelles auxquels avaient avais avait avant avec avez
		aviez avions avoir avons ayant ayez ayons c ça car ce ceci cela celle celles
		celui ces cet cette ceux chaque chez ci comme comment d dans de des donc dont
		du elle elles en encore entre es est et étaient étais était étant été êtes
		étiez étions être eu eue eues eûmes eurent eus eusse eussent eut eux fait
		faites fois font furent fus fut ici il ils j je jusqu jusque l la là laquelle
		le lequel les lesquelles lesquels leur leurs lors lui m ma mais me même mêmes
		mes moi mon n ne ni nos notre nous on ont ou où par parce pas peu peut plus
		pour pourquoi qu quand que quel quelle quelles quels qui quoi s sa sans se
		sera serai seraient serais serait seras serez seriez serions serons seront
		ses si sien sienne soi soient sois soit sommes son sont sous suis sur t ta
		tandis te tes toi ton tous tout toute toutes très tu un une unes uns vers
		voici voilà vos votre vous y
	`)...),
	i18n.LangEN: setOf(strings.Fields(`
		a about above after again against all am an and any are as at be because
		been before being below between both but by can could did do does doing
		down during each few for from further had has have having he her here hers
		herself him himself his how i if in into is it its itself just me more most
		my myself no nor not of off on once only or other our ours ourselves out
		over own same she should so some such than that the their theirs them
		themselves then there these they this those through to too under until up
		very was we were what when where which while who whom why will with would
		you your yours yourself yourselves s t d ll m re ve don doesn didn isn
		wasn weren won
	`)...),
}

// StopWords returns the stop-word set for lang.
func StopWords(lang i18n.Language) map[string]bool {
	return stopWords[lang]
}
