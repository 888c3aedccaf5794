// Package docsource loads documentation sources and extracts the DM
// declarations and cross-references they contain.
//
// Sources are line-oriented text. The recognised markup is:
//
//	.. dm:object:: /turf/simulated      sets the container for what follows
//	.. dm:proc:: Entered(atom/movable/AM)
//	.. dm:verb:: say(msg as text)
//	.. dm:atom:: /obj/item/New(loc)
//	.. dm:var:: density
//	:dm:p:`Entered()`   :dm:v:`~/mob/verb/say`   :dm:a:`spawn <New()>`
//
// Every declaration and reference records the container that was active on
// its line, so later phases never consult mutable scanner state.
package docsource
