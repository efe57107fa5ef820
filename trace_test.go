package detest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookahead_PendingExceptionAlwaysWins(t *testing.T) {
	th := newThread(0, &NewCVarAction{})
	exc := Exception{Value: "boom"}
	th.PendingException = &exc
	th.Mask = MaskedInterruptible // deliverability was already checked at send time

	assert.Equal(t, Lookahead{Kind: ActThrow}, lookahead(th))
}

func TestLookahead_TranslatesEachActionKind(t *testing.T) {
	cases := []struct {
		name string
		a    Action
		want Lookahead
	}{
		{"fork", &ForkAction{}, Lookahead{Kind: ActFork}},
		{"put", &PutAction{Var: 7}, Lookahead{Kind: ActPut, Resource: CVarId(7)}},
		{"take", &TakeAction{Var: 9}, Lookahead{Kind: ActTake, Resource: CVarId(9)}},
		{"stop", &StopAction{}, Lookahead{Kind: ActStop}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			th := newThread(0, c.a)
			assert.Equal(t, c.want, lookahead(th))
		})
	}
}
