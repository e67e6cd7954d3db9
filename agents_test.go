package nocturneagent

import "testing"

func TestEpisodeFirstDoneWins(t *testing.T) {
	ep := newEpisode([]AgentID{5, 2})
	if ep.ids[0] != 2 || ep.ids[1] != 5 {
		t.Fatalf("ids should be sorted: %v", ep.ids)
	}
	ep.Update(&StepResult{
		Done: map[AgentID]bool{2: true, 5: false},
		Info: map[AgentID]TerminalInfo{2: {GoalAchieved: true}},
	})
	if ep.Alive(2) || !ep.Alive(5) {
		t.Fatal("unexpected liveness")
	}
	if ep.AllTerminated() {
		t.Fatal("agent 5 is still running")
	}
	ep.Update(&StepResult{
		Done: map[AgentID]bool{2: true, 5: true, 9: true},
		Info: map[AgentID]TerminalInfo{
			2: {OffRoad: true, Collided: true},
			5: {OffRoad: true},
			9: {GoalAchieved: true},
		},
	})
	if !ep.AllTerminated() {
		t.Fatal("all agents should be terminated")
	}
	if ep.Alive(9) {
		t.Error("unknown agents are never alive")
	}
	expected := episodeTotals{GoalAchieved: 1, OffRoad: 1}
	if totals := ep.Totals(); totals != expected {
		t.Errorf("expected %+v but got %+v", expected, totals)
	}
}

func TestAgentStateTerminate(t *testing.T) {
	var s agentState
	if !s.Alive() {
		t.Fatal("new agent should be alive")
	}
	if !s.Terminate(TerminalInfo{Collided: true}) {
		t.Fatal("first termination should succeed")
	}
	if s.Terminate(TerminalInfo{GoalAchieved: true}) {
		t.Fatal("second termination should fail")
	}
	if !s.info.Collided || s.info.GoalAchieved {
		t.Errorf("info was overwritten: %+v", s.info)
	}
}

func TestEpisodeUnfinishedTotals(t *testing.T) {
	ep := newEpisodeFromObs(map[AgentID]int{1: 0, 2: 0})
	if (ep.Totals() != episodeTotals{}) {
		t.Error("unfinished agents should contribute nothing")
	}
}
