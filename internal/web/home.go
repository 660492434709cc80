package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home(flash, name string, rooms []RoomSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Card Clash</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Card Clash</span>
        <h1>Two cards. One winner.</h1>
        <p>Host a room in seconds or jump into a game with your code.</p>
      </header>
`)
		if flash != "" {
			_, _ = io.WriteString(w, `      <div class="flash">`+templ.EscapeString(flash)+`</div>
`)
		}
		_, _ = io.WriteString(w, `      <section class="panel">
        <div>
          <h2>Create a room</h2>
          <p>Open a new lobby and share the join code with your players.</p>
        </div>
        <form id="createForm" class="join-form">
          <input name="name" placeholder="Your name" autocomplete="name" value="`+templ.EscapeString(name)+`" required/>
          <button type="submit" class="primary">Create room</button>
        </form>
        <div id="createResult" class="result"></div>
      </section>

      <section class="panel">
        <div>
          <h2>Join a room</h2>
          <p>Enter the join code from the host screen and your name.</p>
        </div>
        <form id="joinForm" class="join-form">
          <input name="code" placeholder="Join code" autocomplete="off" required/>
          <input name="name" placeholder="Your name" autocomplete="name" value="`+templ.EscapeString(name)+`" required/>
          <button type="submit" class="secondary">Join room</button>
        </form>
        <div id="joinResult" class="result"></div>
      </section>

      <section class="panel">
        <h2>Open rooms</h2>
        <ul id="roomList" class="room-list">
`)
		for _, room := range rooms {
			_, _ = io.WriteString(w, `          <li><a href="/rooms/`+templ.EscapeString(room.ID)+`">`+templ.EscapeString(room.JoinCode)+`</a> <span class="muted">`+templ.EscapeString(room.Status)+`</span></li>
`)
		}
		_, _ = io.WriteString(w, `        </ul>
      </section>
    </main>

    <script>
      const createForm = document.getElementById("createForm");
      const createResult = document.getElementById("createResult");
      const joinForm = document.getElementById("joinForm");
      const joinResult = document.getElementById("joinResult");

      createForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        createResult.textContent = "Creating room...";
        const name = createForm.elements.name.value.trim();
        const res = await fetch("/api/rooms", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ name })
        });
        const data = await res.json();
        if (!res.ok) {
          createResult.textContent = data.error || "Failed to create room.";
          return;
        }
        window.location = "/rooms/" + data.room_id + "?player_id=" + data.player_id;
      });

      joinForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        joinResult.textContent = "Joining room...";
        const code = joinForm.elements.code.value.trim();
        const name = joinForm.elements.name.value.trim();
        const res = await fetch("/api/rooms/" + encodeURIComponent(code) + "/join", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ name })
        });
        const data = await res.json();
        if (!res.ok) {
          joinResult.textContent = data.error || "Failed to join room.";
          return;
        }
        window.location = "/play/" + data.room_id + "/" + data.player_id;
      });

      const proto = window.location.protocol === "https:" ? "wss" : "ws";
      const socket = new WebSocket(proto + "://" + window.location.host + "/ws/home");
      socket.onmessage = (event) => {
        const data = JSON.parse(event.data);
        const list = document.getElementById("roomList");
        list.innerHTML = "";
        for (const room of data.rooms || []) {
          const item = document.createElement("li");
          const link = document.createElement("a");
          link.href = "/rooms/" + room.id;
          link.textContent = room.join_code;
          const status = document.createElement("span");
          status.className = "muted";
          status.textContent = " " + room.status;
          item.appendChild(link);
          item.appendChild(status);
          list.appendChild(item);
        }
      };
    </script>
  </body>
</html>
`)
		return nil
	})
}
