package testutil

// WithTurfTestData adds a small turf hierarchy split over two documents.
//
// Structure:
//
//	turfs:  /turf/simulated            (atom)
//	        /turf/simulated/proc/Entered
//	        /turf/simulated/var/density
//	        /turf/simulated/verb/Inspect
//	mobs:   /mob/proc/Move
//	        /mob/verb/say
//
// turfs references Move before mobs declares it.
func (b *Builder) WithTurfTestData() *Builder {
	return b.
		WithDocument("turfs",
			Atom("/turf/simulated"),
			Object("/turf/simulated"),
			Proc("proc/Entered(atom/movable/AM, atom/OldLoc)"),
			Var("var/density"),
			Verb("verb/Inspect()"),
			Ref("p", "Entered()"),
			Ref("p", "/mob/proc/Move"),
			Ref("v", "Inspect"),
		).
		WithDocument("mobs",
			Object("/mob"),
			Proc("proc/Move(NewLoc, Dir)"),
			Verb("verb/say(msg as text)"),
			Ref("a", "/turf/simulated"),
			Ref("v", "say"),
		)
}

// WithDuplicateTestData adds two documents that both declare /obj/proc/use.
func (b *Builder) WithDuplicateTestData() *Builder {
	return b.
		WithDocument("first", Proc("/obj/proc/use(mob/user)")).
		WithDocument("second", Text("Overrides use."), Proc("/obj/proc/use(mob/user, params)"))
}
