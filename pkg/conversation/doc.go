// Package conversation drives the multi-turn claim dialogue.
//
// # Stages
//
// A session moves through these stages:
//
//	plan_selection → initial_assessment → data_gathering ⇄ plan_analysis
//	  → clarification (loops) → final_analysis → follow_up
//
// plus the error stage, entered when a transition fails. A failed
// transition never commits: the session keeps the state it had before the
// utterance and the next utterance restarts from plan resolution.
//
// # Usage
//
//	machine, err := conversation.New(store, planManager, engine,
//	    conversation.WithCollaborator(collab),
//	    conversation.WithMetrics(collector),
//	    conversation.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//
//	resp := machine.Handle(ctx, conversation.Request{
//	    SessionID: id,
//	    Utterance: "My father is 67 and needs cataract surgery",
//	})
//
// Each utterance is handled inside the store's Update, so turns for one
// session are strictly sequential while different sessions run in
// parallel.
package conversation
