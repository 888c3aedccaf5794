package docsource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/dmdoc/internal/domain/dm"
)

const turfSource = `Turfs
=====

.. dm:object:: /turf/simulated

.. dm:proc:: Entered(atom/movable/AM, atom/OldLoc)

   Called when :dm:p:` + "`Entered()`" + ` fires; see :dm:v:` + "`~/mob/verb/say`" + `.

.. dm:var:: density

.. dm:object::

.. dm:atom:: /obj/item/New(loc)
.. dm:widget:: ignored
Unknown :dm:q:` + "`nope`" + ` role and :dm:a:` + "`spawn <New()>`" + `.
`

func TestScan(t *testing.T) {
	doc, err := Scan("turf", strings.NewReader(turfSource))
	require.NoError(t, err)
	require.Equal(t, dm.DocID("turf"), doc.ID)

	require.Len(t, doc.Declarations, 3)

	entered := doc.Declarations[0]
	require.Equal(t, dm.KindProc, entered.Kind)
	require.Equal(t, "Entered(atom/movable/AM, atom/OldLoc)", entered.Signature)
	require.Equal(t, 6, entered.Line)
	require.Equal(t, "/turf/simulated", entered.Container.String())

	density := doc.Declarations[1]
	require.Equal(t, dm.KindVar, density.Kind)
	require.Equal(t, "/turf/simulated", density.Container.String())

	newAtom := doc.Declarations[2]
	require.Equal(t, dm.KindAtom, newAtom.Kind)
	require.True(t, newAtom.Container.IsZero(), "empty dm:object clears the container")

	require.Len(t, doc.References, 3)
	require.Equal(t, "p", doc.References[0].Role.Name)
	require.Equal(t, "Entered()", doc.References[0].Text)
	require.Equal(t, 8, doc.References[0].Line)
	require.Equal(t, "/turf/simulated", doc.References[0].Container.String())
	require.Equal(t, "v", doc.References[1].Role.Name)
	require.Equal(t, "~/mob/verb/say", doc.References[1].Text)
	require.Equal(t, "a", doc.References[2].Role.Name)
	require.Equal(t, "spawn <New()>", doc.References[2].Text)
	require.True(t, doc.References[2].Container.IsZero())
}

func TestScan_RelativeObjectNests(t *testing.T) {
	src := ".. dm:object:: /mob\n.. dm:object:: living\n.. dm:proc:: Life()\n"
	doc, err := Scan("mob", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, doc.Declarations, 1)
	require.Equal(t, "/mob/living", doc.Declarations[0].Container.String())
}

func TestScan_TopLevelRelativeObjectIsRooted(t *testing.T) {
	src := ".. dm:object:: turf/simulated\n.. dm:proc:: Entered()\n:dm:p:`Entered()`\n"
	doc, err := Scan("turf", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, doc.Declarations, 1)
	require.Len(t, doc.References, 1)
	require.Equal(t, "/turf/simulated", doc.Declarations[0].Container.String())
	require.Equal(t, "/turf/simulated", doc.References[0].Container.String())
}

func TestScan_ContainerCapturedByValue(t *testing.T) {
	src := ".. dm:object:: /a\n:dm:p:`x`\n.. dm:object:: /b\n:dm:p:`y`\n"
	doc, err := Scan("d", strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, "/a", doc.References[0].Container.String())
	require.Equal(t, "/b", doc.References[1].Container.String())
}
